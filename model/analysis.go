// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package model

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-air/regnet/dimacs"
	"github.com/go-air/regnet/expr"
	"github.com/go-air/regnet/fix"
	"github.com/go-air/regnet/prime"
)

// Primes holds the prime implicants of a component's rule and of its
// negation.
type Primes struct {
	ID   expr.ID
	Name string
	Pos  prime.Cover
	Neg  prime.Cover
}

// Primes computes the prime implicants of every rule of m, in component
// order.  Up to workers rules are processed in parallel (one per rule if
// workers <= 0).  See prime.Of for maxSupport.
func (m *Model) Primes(ctx context.Context, maxSupport, workers int) ([]Primes, error) {
	start := time.Now()
	res := make([]Primes, len(m.order))
	for i, id := range m.order {
		c := m.byID[id]
		res[i] = Primes{ID: id, Name: c.name}
	}
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range res {
		rule := m.byID[res[i].ID].rule
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pos, err := prime.Of(rule, maxSupport)
			if err != nil {
				return fmt.Errorf("primes of %q: %w", res[i].Name, err)
			}
			neg, err := prime.Of(expr.Not(rule), maxSupport)
			if err != nil {
				return fmt.Errorf("primes of %q: %w", res[i].Name, err)
			}
			res[i].Pos, res[i].Neg = pos, neg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	m.log.Debug("prime implicants",
		slog.Int("components", len(res)),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

// Fixpoints returns the stable states of m.  See fix.Solve.
func (m *Model) Fixpoints(ctx context.Context, opts fix.Options) ([]fix.State, error) {
	if opts.Logger == nil {
		opts.Logger = m.log
	}
	return fix.Solve(ctx, m, opts)
}

// FixpointsByName is like Fixpoints with the restriction given by component
// names.
func (m *Model) FixpointsByName(ctx context.Context, restrict map[string]bool, opts fix.Options) ([]fix.State, error) {
	r := make(map[expr.ID]bool, len(restrict)+len(opts.Restrict))
	for id, b := range opts.Restrict {
		r[id] = b
	}
	for name, b := range restrict {
		id, err := m.ID(name)
		if err != nil {
			return nil, err
		}
		r[id] = b
	}
	opts.Restrict = r
	return m.Fixpoints(ctx, opts)
}

// TrapSpaces returns the trap spaces of m.  See fix.TrapSpaces.
func (m *Model) TrapSpaces(ctx context.Context, opts fix.TrapOptions) ([]fix.Space, error) {
	if opts.Logger == nil {
		opts.Logger = m.log
	}
	return fix.TrapSpaces(ctx, m, opts)
}

// WriteDimacs writes to w a DIMACS CNF whose models are the stable states
// of m.  Comment lines "c <var> <name>" give the variable of each
// component.
func (m *Model) WriteDimacs(w io.Writer, maxSupport int) error {
	dw := dimacs.NewWriter()
	vs, err := fix.Encode(m, dw, maxSupport)
	if err != nil {
		return err
	}
	for _, id := range m.order {
		v := vs[id]
		dw.Reserve(v)
		dw.Comment("%d %s", v, m.byID[id].name)
	}
	_, err = dw.WriteTo(w)
	return err
}
