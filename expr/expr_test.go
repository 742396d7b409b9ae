// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package expr_test

import (
	"testing"

	"github.com/go-air/regnet/expr"
	"github.com/go-air/regnet/gen"
)

// equiv checks a and b agree on every assignment of ids.
func equiv(a, b *expr.Expr, ids []expr.ID) bool {
	for m := 0; m < 1<<uint(len(ids)); m++ {
		val := expr.Assignment{}
		for i, id := range ids {
			val[id] = m&(1<<uint(i)) != 0
		}
		if a.Eval(val.Value) != b.Eval(val.Value) {
			return false
		}
	}
	return true
}

func TestEval(t *testing.T) {
	x, y := expr.Var(0), expr.Var(1)
	e := expr.Or(expr.And(x, expr.Not(y)), expr.And(expr.Not(x), y))
	for _, tc := range []struct {
		a    expr.Assignment
		want bool
	}{
		{expr.Assignment{}, false},
		{expr.Assignment{0: true}, true},
		{expr.Assignment{1: true}, true},
		{expr.Assignment{0: true, 1: true}, false},
	} {
		if got := e.Eval(tc.a.Value); got != tc.want {
			t.Errorf("xor under %v: got %t want %t", tc.a, got, tc.want)
		}
	}
}

func TestSupport(t *testing.T) {
	e := expr.Ands(expr.Var(7), expr.Not(expr.Var(2)), expr.Or(expr.Var(7), expr.Var(4)), expr.True)
	sup := e.Support()
	want := []expr.ID{2, 4, 7}
	if len(sup) != len(want) {
		t.Fatalf("support %v want %v", sup, want)
	}
	for i := range want {
		if sup[i] != want[i] {
			t.Errorf("support %v want %v", sup, want)
		}
	}
	if !e.Mentions(4) || e.Mentions(3) {
		t.Errorf("mentions")
	}
	if len(expr.True.Support()) != 0 {
		t.Errorf("constant has support")
	}
}

func TestJoin(t *testing.T) {
	if !expr.Ands().IsConst(true) {
		t.Errorf("empty conjunction")
	}
	if !expr.Ors().IsConst(false) {
		t.Errorf("empty disjunction")
	}
	x := expr.Var(3)
	if expr.Ands(x) != x || expr.Ors(x) != x {
		t.Errorf("singleton join")
	}
	if s := expr.Ors(expr.Var(0), expr.Var(1), expr.Var(2)).Size(); s != 5 {
		t.Errorf("size %d", s)
	}
}

func TestEqual(t *testing.T) {
	a := expr.And(expr.Var(0), expr.Not(expr.Var(1)))
	b := expr.And(expr.Var(0), expr.Not(expr.Var(1)))
	c := expr.And(expr.Not(expr.Var(1)), expr.Var(0))
	if !expr.Equal(a, b) {
		t.Errorf("equal trees differ")
	}
	if expr.Equal(a, c) {
		t.Errorf("commuted trees are not structurally equal")
	}
	if expr.Equal(expr.True, expr.False) {
		t.Errorf("constants")
	}
}

func TestSimplifyRules(t *testing.T) {
	x, y := expr.Var(0), expr.Var(1)
	for i, tc := range []struct {
		in, want *expr.Expr
	}{
		{expr.And(x, expr.False), expr.False},
		{expr.And(expr.True, x), x},
		{expr.Or(x, expr.True), expr.True},
		{expr.Or(expr.False, x), x},
		{expr.Not(expr.Not(x)), x},
		{expr.Not(expr.True), expr.False},
		{expr.And(x, x), x},
		{expr.Or(y, y), y},
		{expr.And(x, expr.Not(x)), expr.False},
		{expr.Or(expr.Not(x), x), expr.True},
		{expr.Not(expr.And(x, expr.Not(x))), expr.True},
		{expr.And(expr.Or(x, expr.False), expr.Not(expr.Not(y))), expr.And(x, y)},
	} {
		got, ch := expr.Simplify(tc.in)
		if !ch {
			t.Errorf("%d: %s unchanged", i, tc.in)
		}
		if !expr.Equal(got, tc.want) {
			t.Errorf("%d: %s simplified to %s, want %s", i, tc.in, got, tc.want)
		}
	}
}

func TestSimplifyUnchanged(t *testing.T) {
	e := expr.Or(expr.And(expr.Var(0), expr.Not(expr.Var(1))), expr.Var(2))
	r, ch := expr.Simplify(e)
	if ch || r != e {
		t.Errorf("simplified expression changed: %s", r)
	}
}

func TestSimplifyRandom(t *testing.T) {
	gen.Seed(17)
	ids := gen.IDs(5)
	for i := 0; i < 500; i++ {
		e := gen.Expr(ids, 6)
		s, _ := expr.Simplify(e)
		if !equiv(e, s, ids) {
			t.Fatalf("simplify changed function: %s -> %s", e, s)
		}
		if s.Size() > e.Size() {
			t.Errorf("simplify grew %s -> %s", e, s)
		}
		if r, ch := expr.Simplify(s); ch || r != s {
			t.Errorf("simplify not idempotent: %s -> %s", s, r)
		}
	}
}

func TestNNFRandom(t *testing.T) {
	gen.Seed(23)
	ids := gen.IDs(5)
	for i := 0; i < 500; i++ {
		e := gen.Expr(ids, 6)
		n, ch := expr.NNF(e)
		if !equiv(e, n, ids) {
			t.Fatalf("nnf changed function: %s -> %s", e, n)
		}
		if !expr.IsNNF(n) {
			t.Errorf("not in nnf: %s", n)
		}
		if ch == expr.IsNNF(e) {
			t.Errorf("nnf reported change %t for %s", ch, e)
		}
		if !ch && n != e {
			t.Errorf("unchanged nnf returned new expression")
		}
		if r, ch := expr.NNF(n); ch || r != n {
			t.Errorf("nnf not idempotent: %s -> %s", n, r)
		}
	}
}

func TestNNF(t *testing.T) {
	x, y := expr.Var(0), expr.Var(1)
	e := expr.Not(expr.Or(x, expr.Not(expr.And(y, expr.Not(x)))))
	n, ch := expr.NNF(e)
	if !ch {
		t.Fatalf("unchanged")
	}
	want := expr.And(expr.Not(x), expr.And(y, expr.Not(x)))
	if !expr.Equal(n, want) {
		t.Errorf("got %s want %s", n, want)
	}
}

func TestSubstitute(t *testing.T) {
	x, y, z := expr.Var(0), expr.Var(1), expr.Var(2)
	keep := expr.And(y, z)
	e := expr.Or(keep, expr.Not(x))
	r, ch := expr.Substitute(e, 0, expr.Or(y, z))
	if !ch {
		t.Fatalf("unchanged")
	}
	a, b := r.Operands()
	if a != keep {
		t.Errorf("unaffected subtree not shared")
	}
	if !expr.Equal(b, expr.Not(expr.Or(y, z))) {
		t.Errorf("substituted %s", b)
	}
	if r2, ch := expr.Substitute(e, 5, expr.True); ch || r2 != e {
		t.Errorf("substitution of absent variable changed e")
	}
}

func TestSubstituteRandom(t *testing.T) {
	gen.Seed(5)
	ids := gen.IDs(4)
	for i := 0; i < 300; i++ {
		e := gen.Expr(ids, 5)
		r := gen.Expr(ids[1:], 3)
		s, _ := expr.Substitute(e, 0, r)
		if s.Mentions(0) {
			t.Fatalf("%s still mentions v0", s)
		}
		for m := 0; m < 8; m++ {
			val := expr.Assignment{1: m&1 != 0, 2: m&2 != 0, 3: m&4 != 0}
			val[0] = r.Eval(val.Value)
			if s.Eval(val.Value) != e.Eval(val.Value) {
				t.Fatalf("e=%s r=%s s=%s differ at %v", e, r, s, val)
			}
		}
	}
}

func TestBreakSelfLink(t *testing.T) {
	x, y := expr.Var(0), expr.Var(1)
	// x <- x | y: from false, x becomes y.
	b := expr.BreakSelfLink(expr.Or(x, y), 0)
	if b.Mentions(0) {
		t.Fatalf("%s mentions v0", b)
	}
	if !equiv(b, y, []expr.ID{0, 1}) {
		t.Errorf("got %s want v1", b)
	}
	// x <- !x oscillates: false, true, false.
	b = expr.BreakSelfLink(expr.Not(x), 0)
	if !equiv(b, expr.False, []expr.ID{0}) {
		t.Errorf("got %s want false", b)
	}
	// x <- x & y | !x & !y: from false, x becomes !y then !y & y | y & !y.
	b = expr.BreakSelfLink(expr.Or(expr.And(x, y), expr.And(expr.Not(x), expr.Not(y))), 0)
	if !equiv(b, expr.False, []expr.ID{0, 1}) {
		t.Errorf("got %s want false", b)
	}
	if e := expr.And(y, y); expr.BreakSelfLink(e, 0) != e {
		t.Errorf("expression without v0 changed")
	}
}

func TestDissolve(t *testing.T) {
	x, y := expr.Var(0), expr.Var(1)
	g := expr.And(x, y)
	f := expr.Or(x, expr.Not(y))

	r, ch := expr.Dissolve(g, 0, f, true)
	if !ch || !r.Mentions(0) {
		t.Errorf("kept self link lost: %s", r)
	}
	r, ch = expr.Dissolve(g, 0, f, false)
	if !ch || r.Mentions(0) {
		t.Errorf("broken self link remains: %s", r)
	}
	// f[x := false] = !y, so g becomes !y & y.
	if !equiv(r, expr.False, []expr.ID{0, 1}) {
		t.Errorf("got %s want false", r)
	}
	if r, ch := expr.Dissolve(y, 0, f, false); ch || r != y {
		t.Errorf("dissolve into independent expression changed it")
	}
}

func TestFormat(t *testing.T) {
	x, y, z := expr.Var(0), expr.Var(1), expr.Var(2)
	names := map[expr.ID]string{0: "a", 1: "b", 2: "c"}
	namer := func(id expr.ID) string { return names[id] }
	for _, tc := range []struct {
		e    *expr.Expr
		want string
	}{
		{expr.True, "true"},
		{expr.Not(x), "!a"},
		{expr.And(x, expr.Or(y, z)), "a & (b | c)"},
		{expr.Or(expr.And(x, y), z), "a & b | c"},
		{expr.Not(expr.And(x, y)), "!(a & b)"},
		{expr.Or(x, expr.Or(y, expr.Not(z))), "a | b | !c"},
	} {
		if got := tc.e.Format(namer); got != tc.want {
			t.Errorf("got %q want %q", got, tc.want)
		}
	}
	if s := expr.And(x, expr.Not(y)).String(); s != "v0 & !v1" {
		t.Errorf("String: %q", s)
	}
}
