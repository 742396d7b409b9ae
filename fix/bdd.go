// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package fix

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalzilio/rudd"

	"github.com/go-air/regnet/expr"
)

// ErrBDD is returned when the decision diagram cannot be built, typically
// because its node table is exhausted.
var ErrBDD = errors.New("fix: bdd construction failed")

var errStop = errors.New("stop")

// Diagram builds decision diagrams of expressions over a fixed list of
// components, level i holding the i'th component.
type Diagram struct {
	B     *rudd.BDD
	level map[expr.ID]int
	memo  map[*expr.Expr]rudd.Node
}

// NewDiagram creates a BDD with one level per element of ids.
func NewDiagram(ids []expr.ID) (*Diagram, error) {
	b, err := rudd.New(len(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBDD, err)
	}
	d := &Diagram{
		B:     b,
		level: make(map[expr.ID]int, len(ids)),
		memo:  make(map[*expr.Expr]rudd.Node)}
	for i, id := range ids {
		d.level[id] = i
	}
	return d, nil
}

// Node returns the BDD of e.
func (d *Diagram) Node(e *expr.Expr) (rudd.Node, error) {
	if n, ok := d.memo[e]; ok {
		return n, nil
	}
	var (
		n   rudd.Node
		err error
		l   rudd.Node
		r   rudd.Node
	)
	a, b := e.Operands()
	switch e.Kind() {
	case expr.KConst:
		n = d.B.False()
		if e.Value() {
			n = d.B.True()
		}
	case expr.KVar:
		lvl, ok := d.level[e.ID()]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownComponent, e.ID())
		}
		n = d.B.Ithvar(lvl)
	case expr.KNot:
		if l, err = d.Node(a); err != nil {
			return nil, err
		}
		n = d.B.Not(l)
	case expr.KAnd, expr.KOr:
		if l, err = d.Node(a); err != nil {
			return nil, err
		}
		if r, err = d.Node(b); err != nil {
			return nil, err
		}
		if e.Kind() == expr.KAnd {
			n = d.B.And(l, r)
		} else {
			n = d.B.Or(l, r)
		}
	}
	if n == nil {
		return nil, ErrBDD
	}
	d.memo[e] = n
	return n, nil
}

// Equivalent returns whether a and b denote the same function.
func (d *Diagram) Equivalent(a, b *expr.Expr) (bool, error) {
	na, err := d.Node(a)
	if err != nil {
		return false, err
	}
	nb, err := d.Node(b)
	if err != nil {
		return false, err
	}
	// nodes are hash-consed, equal functions share their node.
	return *na == *nb, nil
}

// Stable returns the BDD of the stability condition of n.
func (d *Diagram) Stable(n Network, ids []expr.ID) (rudd.Node, error) {
	acc := d.B.True()
	for _, id := range ids {
		f, err := d.Node(n.Rule(id))
		if err != nil {
			return nil, err
		}
		acc = d.B.And(acc, d.B.Equiv(d.B.Ithvar(d.level[id]), f))
		if acc == nil {
			return nil, ErrBDD
		}
	}
	return acc, nil
}

func solveBDD(ctx context.Context, n Network, ids []expr.ID, opts *Options) ([]State, error) {
	if len(ids) == 0 {
		return []State{{}}, nil
	}
	d, err := NewDiagram(ids)
	if err != nil {
		return nil, err
	}
	root, err := d.Stable(n, ids)
	if err != nil {
		return nil, err
	}
	for id, b := range opts.Restrict {
		m := d.B.Ithvar(d.level[id])
		if !b {
			m = d.B.NIthvar(d.level[id])
		}
		root = d.B.And(root, m)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var states []State
	err = d.B.Allsat(func(vals []int) error {
		more := expand(vals, ids, func(s State) bool {
			states = append(states, s)
			return !opts.full(states) && ctx.Err() == nil
		})
		if !more && ctx.Err() == nil {
			return errStop
		}
		return ctx.Err()
	}, root)
	if err != nil && !errors.Is(err, errStop) {
		return nil, err
	}
	return states, nil
}

// expand calls emit with each total assignment matching vals, where -1
// marks a free level, until emit returns false.  It returns false if it
// was stopped by emit.
func expand(vals []int, ids []expr.ID, emit func(State) bool) bool {
	s := make(State, len(ids))
	var free []expr.ID
	for i, id := range ids {
		switch vals[i] {
		case 0, 1:
			s[id] = vals[i] == 1
		default:
			free = append(free, id)
		}
	}
	var rec func(k int) bool
	rec = func(k int) bool {
		if k == len(free) {
			c := make(State, len(s))
			for v, b := range s {
				c[v] = b
			}
			return emit(c)
		}
		for _, b := range [...]bool{false, true} {
			s[free[k]] = b
			if !rec(k + 1) {
				return false
			}
		}
		return true
	}
	return rec(0)
}
