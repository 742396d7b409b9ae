// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package prime

import (
	"sort"
	"strings"

	"github.com/go-air/regnet/expr"
)

// Literal fixes a component to a value.
type Literal struct {
	ID    expr.ID
	Value bool
}

// Expr returns the literal as an expression.
func (m Literal) Expr() *expr.Expr {
	if m.Value {
		return expr.Var(m.ID)
	}
	return expr.Not(expr.Var(m.ID))
}

// Implicant is a conjunction of literals over distinct components, sorted
// by component.
type Implicant []Literal

// Expr returns the conjunction of the literals of p.  The empty implicant is
// true.
func (p Implicant) Expr() *expr.Expr {
	es := make([]*expr.Expr, len(p))
	for i, m := range p {
		es[i] = m.Expr()
	}
	return expr.Ands(es...)
}

// Eval returns whether every literal of p holds under val.
func (p Implicant) Eval(val func(expr.ID) bool) bool {
	for _, m := range p {
		if val(m.ID) != m.Value {
			return false
		}
	}
	return true
}

// Lookup returns the value p gives to id, if any.
func (p Implicant) Lookup(id expr.ID) (value, ok bool) {
	i := sort.Search(len(p), func(i int) bool { return p[i].ID >= id })
	if i < len(p) && p[i].ID == id {
		return p[i].Value, true
	}
	return false, false
}

// Subsumes returns whether every literal of p occurs in q, that is whether
// q entails p.
func (p Implicant) Subsumes(q Implicant) bool {
	if len(p) > len(q) {
		return false
	}
	for _, m := range p {
		v, ok := q.Lookup(m.ID)
		if !ok || v != m.Value {
			return false
		}
	}
	return true
}

// Without returns a copy of p without its i'th literal.
func (p Implicant) Without(i int) Implicant {
	r := make(Implicant, 0, len(p)-1)
	r = append(r, p[:i]...)
	return append(r, p[i+1:]...)
}

// Format formats p as a conjunction, "true" when empty.
func (p Implicant) Format(namer expr.Namer) string {
	if namer == nil {
		namer = expr.DefaultNamer
	}
	if len(p) == 0 {
		return "true"
	}
	parts := make([]string, len(p))
	for i, m := range p {
		if m.Value {
			parts[i] = namer(m.ID)
		} else {
			parts[i] = "!" + namer(m.ID)
		}
	}
	return strings.Join(parts, " & ")
}

func (p Implicant) String() string {
	return p.Format(nil)
}

// Cover is a disjunction of implicants.
type Cover []Implicant

// Expr returns the disjunction of c.  The empty cover is false.
func (c Cover) Expr() *expr.Expr {
	es := make([]*expr.Expr, len(c))
	for i, p := range c {
		es[i] = p.Expr()
	}
	return expr.Ors(es...)
}

// Eval returns whether some implicant of c holds under val.
func (c Cover) Eval(val func(expr.ID) bool) bool {
	for _, p := range c {
		if p.Eval(val) {
			return true
		}
	}
	return false
}

// Format formats c one implicant per line.
func (c Cover) Format(namer expr.Namer) string {
	lines := make([]string, len(c))
	for i, p := range c {
		lines[i] = p.Format(namer)
	}
	return strings.Join(lines, "\n")
}

func (c Cover) String() string {
	return c.Format(nil)
}

func (c Cover) sort() {
	sort.Slice(c, func(i, j int) bool {
		return less(c[i], c[j])
	})
}

func less(p, q Implicant) bool {
	if len(p) != len(q) {
		return len(p) < len(q)
	}
	for k := range p {
		if p[k].ID != q[k].ID {
			return p[k].ID < q[k].ID
		}
		if p[k].Value != q[k].Value {
			return q[k].Value
		}
	}
	return false
}
