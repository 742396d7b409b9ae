// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package expr

// Simplify rewrites e bottom up with the following local rules
//
//	x & false -> false     x | true -> true
//	x & true  -> x         x | false -> x
//	!!x       -> x         !c -> constant
//	x & x     -> x         x | x -> x
//	x & !x    -> false     x | !x -> true
//
// Operands are simplified before their parent, and every rule returns
// either a constant or an already simplified operand, so a single pass
// reaches a fixed point.  Simplify is not a minimizer.
//
// Simplify returns e and false if no rule applies anywhere in e.
func Simplify(e *Expr) (*Expr, bool) {
	switch e.kind {
	case KConst, KVar:
		return e, false
	case KNot:
		a, ch := Simplify(e.a)
		switch a.kind {
		case KConst:
			return Const(!a.val), true
		case KNot:
			return a.a, true
		}
		if ch {
			return Not(a), true
		}
		return e, false
	case KAnd, KOr:
		a, ca := Simplify(e.a)
		b, cb := Simplify(e.b)
		if r := reduce(e.kind, a, b); r != nil {
			return r, true
		}
		if ca || cb {
			return &Expr{kind: e.kind, a: a, b: b}, true
		}
		return e, false
	}
	panic("expr: invalid kind " + e.kind.String())
}

// reduce applies the binary rules to simplified operands, returning nil when
// none applies.
func reduce(k Kind, a, b *Expr) *Expr {
	// absorbing and neutral elements
	abs, neutral := false, true
	if k == KOr {
		abs, neutral = true, false
	}
	switch {
	case a.IsConst(abs) || b.IsConst(abs):
		return Const(abs)
	case a.IsConst(neutral):
		return b
	case b.IsConst(neutral):
		return a
	case Equal(a, b):
		return a
	case complements(a, b):
		return Const(abs)
	}
	return nil
}

func complements(a, b *Expr) bool {
	if a.kind == KNot && Equal(a.a, b) {
		return true
	}
	return b.kind == KNot && Equal(b.a, a)
}

// NNF returns an expression equivalent to e in which negations are applied
// only to variables, using De Morgan's laws and double negation.  Negated
// constants are folded.
//
// NNF returns e and false if e is already in negation normal form.
func NNF(e *Expr) (*Expr, bool) {
	switch e.kind {
	case KConst, KVar:
		return e, false
	case KNot:
		return nnfNot(e.a, e)
	case KAnd, KOr:
		a, ca := NNF(e.a)
		b, cb := NNF(e.b)
		if ca || cb {
			return &Expr{kind: e.kind, a: a, b: b}, true
		}
		return e, false
	}
	panic("expr: invalid kind " + e.kind.String())
}

// nnfNot returns the negation normal form of !x.  orig, if not nil, is the
// node !x from the input and is returned when it is already normal.
func nnfNot(x, orig *Expr) (*Expr, bool) {
	switch x.kind {
	case KConst:
		return Const(!x.val), true
	case KVar:
		if orig != nil {
			return orig, false
		}
		return Not(x), true
	case KNot:
		r, _ := NNF(x.a)
		return r, true
	case KAnd, KOr:
		k := KOr
		if x.kind == KOr {
			k = KAnd
		}
		a, _ := nnfNot(x.a, nil)
		b, _ := nnfNot(x.b, nil)
		return &Expr{kind: k, a: a, b: b}, true
	}
	panic("expr: invalid kind " + x.kind.String())
}

// IsNNF returns whether every negation in e wraps a variable.
func IsNNF(e *Expr) bool {
	switch e.kind {
	case KConst, KVar:
		return true
	case KNot:
		return e.a.kind == KVar
	}
	return IsNNF(e.a) && IsNNF(e.b)
}
