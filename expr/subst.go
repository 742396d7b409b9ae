// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package expr

// Substitute replaces every occurence of the variable v in e by r.
// Subtrees of e which do not mention v are shared with the result.
//
// Substitute returns e and false if v does not occur in e.
func Substitute(e *Expr, v ID, r *Expr) (*Expr, bool) {
	switch e.kind {
	case KConst:
		return e, false
	case KVar:
		if e.id == v {
			return r, true
		}
		return e, false
	case KNot:
		a, ch := Substitute(e.a, v, r)
		if !ch {
			return e, false
		}
		return Not(a), true
	case KAnd, KOr:
		a, ca := Substitute(e.a, v, r)
		b, cb := Substitute(e.b, v, r)
		if !ca && !cb {
			return e, false
		}
		return &Expr{kind: e.kind, a: a, b: b}, true
	}
	panic("expr: invalid kind " + e.kind.String())
}

// Cofactor returns e with v fixed to b.
func Cofactor(e *Expr, v ID, b bool) *Expr {
	r, _ := Substitute(e, v, Const(b))
	return r
}

// BreakSelfLink returns a function equivalent to e[v := e[v := false]],
// which does not mention v.  Read as the update function of v, it is the
// value v takes after two updates starting from false, which is its stable
// value whenever the other components admit exactly one.  If v does not
// occur in e, e is returned.
func BreakSelfLink(e *Expr, v ID) *Expr {
	if !e.Mentions(v) {
		return e
	}
	r, _ := Substitute(e, v, Cofactor(e, v, false))
	return r
}

// Dissolve substitutes r for v in e, as done when the component v with
// update function r is removed from a network.
//
// When r itself mentions v, v regulates itself.  If keepSelfLink is true the
// occurences of v in r are kept, and so v still occurs in the result.
// Otherwise the self link is first broken with BreakSelfLink and the result
// is free of v.
//
// Dissolve returns e and false if v does not occur in e.
func Dissolve(e *Expr, v ID, r *Expr, keepSelfLink bool) (*Expr, bool) {
	if !e.Mentions(v) {
		return e, false
	}
	if !keepSelfLink {
		r = BreakSelfLink(r, v)
	}
	return Substitute(e, v, r)
}
