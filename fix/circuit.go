// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package fix

import (
	"context"
	"log/slog"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/go-air/regnet/expr"
)

// Compiler translates expressions into an and-inverter circuit, sharing
// the translation of nodes referenced several times.
type Compiler struct {
	C    *logic.C
	ins  map[expr.ID]z.Lit
	memo map[*expr.Expr]z.Lit
}

// NewCompiler creates a circuit with one input per element of ids.
func NewCompiler(ids []expr.ID) *Compiler {
	c := &Compiler{
		C:    logic.NewCCap(4 * (len(ids) + 1)),
		ins:  make(map[expr.ID]z.Lit, len(ids)),
		memo: make(map[*expr.Expr]z.Lit)}
	for _, id := range ids {
		c.ins[id] = c.C.Lit()
	}
	return c
}

// In returns the input literal of id.
func (c *Compiler) In(id expr.ID) z.Lit {
	return c.ins[id]
}

// Lit returns a literal of c.C equivalent to e.
func (c *Compiler) Lit(e *expr.Expr) z.Lit {
	if m, ok := c.memo[e]; ok {
		return m
	}
	var m z.Lit
	a, b := e.Operands()
	switch e.Kind() {
	case expr.KConst:
		m = c.C.F
		if e.Value() {
			m = c.C.T
		}
	case expr.KVar:
		m = c.ins[e.ID()]
	case expr.KNot:
		m = c.Lit(a).Not()
	case expr.KAnd:
		m = c.C.And(c.Lit(a), c.Lit(b))
	case expr.KOr:
		m = c.C.Or(c.Lit(a), c.Lit(b))
	}
	c.memo[e] = m
	return m
}

// Stable returns a literal which is true exactly in the stable states of
// n.
func (c *Compiler) Stable(n Network, ids []expr.ID) z.Lit {
	acc := c.C.T
	for _, id := range ids {
		x, f := c.ins[id], c.Lit(n.Rule(id))
		eq := c.C.Or(c.C.And(x, f), c.C.And(x.Not(), f.Not()))
		acc = c.C.And(acc, eq)
	}
	return acc
}

func solveCircuit(ctx context.Context, n Network, ids []expr.ID, opts *Options) ([]State, error) {
	if len(ids) == 0 {
		return []State{{}}, nil
	}
	c := NewCompiler(ids)
	root := c.Stable(n, ids)
	opts.logger().Debug("circuit encoding",
		slog.Int("components", len(ids)),
		slog.Int("nodes", c.C.Len()))
	if root == c.C.F {
		return nil, nil
	}
	g := gini.NewV(c.C.Len())
	c.C.ToCnf(g)
	// the circuit reserves variable 1 for its constants.
	g.Add(c.C.T)
	g.Add(z.LitNull)
	g.Add(root)
	g.Add(z.LitNull)
	lits := make([]z.Lit, len(ids))
	for i, id := range ids {
		lits[i] = c.ins[id]
	}
	return enumerate(ctx, g, ids, lits, opts)
}
