// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package expr

import "sort"

// ID identifies a component of a network.
type ID uint32

// Kind is the kind of an expression node.
type Kind uint8

const (
	KConst Kind = iota
	KVar
	KNot
	KAnd
	KOr
)

func (k Kind) String() string {
	switch k {
	case KConst:
		return "const"
	case KVar:
		return "var"
	case KNot:
		return "not"
	case KAnd:
		return "and"
	case KOr:
		return "or"
	}
	return "unknown"
}

// Expr is an immutable Boolean expression node.
type Expr struct {
	kind Kind
	val  bool
	id   ID
	a, b *Expr
}

var (
	// True is the constant true expression.
	True = &Expr{kind: KConst, val: true}
	// False is the constant false expression.
	False = &Expr{kind: KConst, val: false}
)

// Const returns the constant expression b.
func Const(b bool) *Expr {
	if b {
		return True
	}
	return False
}

// Var returns a reference to the component id.
func Var(id ID) *Expr {
	return &Expr{kind: KVar, id: id}
}

// Not returns the negation of e.
func Not(e *Expr) *Expr {
	return &Expr{kind: KNot, a: e}
}

// And returns the conjunction of a and b.
func And(a, b *Expr) *Expr {
	return &Expr{kind: KAnd, a: a, b: b}
}

// Or returns the disjunction of a and b.
func Or(a, b *Expr) *Expr {
	return &Expr{kind: KOr, a: a, b: b}
}

// Ands returns the conjunction of es, or True if es is empty.
func Ands(es ...*Expr) *Expr {
	return join(KAnd, True, es)
}

// Ors returns the disjunction of es, or False if es is empty.
func Ors(es ...*Expr) *Expr {
	return join(KOr, False, es)
}

func join(k Kind, empty *Expr, es []*Expr) *Expr {
	if len(es) == 0 {
		return empty
	}
	r := es[0]
	for _, e := range es[1:] {
		r = &Expr{kind: k, a: r, b: e}
	}
	return r
}

// Kind returns the kind of the root node of e.
func (e *Expr) Kind() Kind {
	return e.kind
}

// Value returns the value of a constant.  It is false for other kinds.
func (e *Expr) Value() bool {
	return e.kind == KConst && e.val
}

// ID returns the component referenced by a variable.  It is 0 for other
// kinds.
func (e *Expr) ID() ID {
	return e.id
}

// Operands returns the operands of e.  For a negation, b is nil.  For leaves
// both are nil.
func (e *Expr) Operands() (a, b *Expr) {
	return e.a, e.b
}

// IsConst returns whether e is the constant b.
func (e *Expr) IsConst(b bool) bool {
	return e.kind == KConst && e.val == b
}

// Eval evaluates e, reading variable values from val.
func (e *Expr) Eval(val func(ID) bool) bool {
	switch e.kind {
	case KConst:
		return e.val
	case KVar:
		return val(e.id)
	case KNot:
		return !e.a.Eval(val)
	case KAnd:
		return e.a.Eval(val) && e.b.Eval(val)
	case KOr:
		return e.a.Eval(val) || e.b.Eval(val)
	}
	panic("expr: invalid kind " + e.kind.String())
}

// Assignment maps components to values.  Components absent from the map
// are false.
type Assignment map[ID]bool

// Value returns the value of id under a.
func (a Assignment) Value(id ID) bool {
	return a[id]
}

// Equal returns whether a and b are structurally identical.
func Equal(a, b *Expr) bool {
	if a == b {
		return true
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KConst:
		return a.val == b.val
	case KVar:
		return a.id == b.id
	case KNot:
		return Equal(a.a, b.a)
	}
	return Equal(a.a, b.a) && Equal(a.b, b.b)
}

// Mentions returns whether id occurs in e.
func (e *Expr) Mentions(id ID) bool {
	switch e.kind {
	case KConst:
		return false
	case KVar:
		return e.id == id
	case KNot:
		return e.a.Mentions(id)
	}
	return e.a.Mentions(id) || e.b.Mentions(id)
}

// Support returns the sorted set of components occuring in e.
func (e *Expr) Support() []ID {
	seen := make(map[ID]struct{})
	e.walkVars(func(id ID) {
		seen[id] = struct{}{}
	})
	res := make([]ID, 0, len(seen))
	for id := range seen {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func (e *Expr) walkVars(f func(ID)) {
	switch e.kind {
	case KConst:
	case KVar:
		f(e.id)
	case KNot:
		e.a.walkVars(f)
	default:
		e.a.walkVars(f)
		e.b.walkVars(f)
	}
}

// Size returns the number of nodes of e, counting shared nodes once per
// occurence.
func (e *Expr) Size() int {
	switch e.kind {
	case KConst, KVar:
		return 1
	case KNot:
		return 1 + e.a.Size()
	}
	return 1 + e.a.Size() + e.b.Size()
}
