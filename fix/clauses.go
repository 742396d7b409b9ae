// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package fix

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
	"golang.org/x/sync/errgroup"

	"github.com/go-air/regnet/expr"
	"github.com/go-air/regnet/prime"
)

// Vars maps the components of a network to solver variables.
type Vars map[expr.ID]z.Var

// Lit returns the literal of id with sign b.
func (vs Vars) Lit(id expr.ID, b bool) z.Lit {
	if b {
		return vs[id].Pos()
	}
	return vs[id].Neg()
}

// NewVars assigns variable i+1 to the i'th element of ids.
func NewVars(ids []expr.ID) Vars {
	vs := make(Vars, len(ids))
	for i, id := range ids {
		vs[id] = z.Var(i + 1)
	}
	return vs
}

// DefaultPatternSupport is the widest rule for which the Clauses backend
// derives forbidden patterns when Options.MaxSupport is 0.  Prime implicant
// computation grows with 3^n in the support of the rule, wider rules are
// encoded as circuits instead.
const DefaultPatternSupport = 10

func (o *Options) patternSupport() int {
	if o.MaxSupport > 0 {
		return o.MaxSupport
	}
	return DefaultPatternSupport
}

// Patterns returns the forbidden patterns of the stability condition of a
// component x with rule f: the prime implicants of !x & f and of x & !f.
// A state is stable for x exactly when it matches none of them.
//
// maxSupport bounds the support of f, 0 meaning prime.DefaultMaxSupport.
// The patterns may mention x in addition.
func Patterns(x expr.ID, f *expr.Expr, maxSupport int) (prime.Cover, error) {
	if maxSupport <= 0 {
		maxSupport = prime.DefaultMaxSupport
	}
	if maxSupport >= prime.MaxSupport {
		maxSupport = prime.MaxSupport - 1
	}
	if n := len(f.Support()); n > maxSupport {
		return nil, fmt.Errorf("%w: rule of %d has %d inputs, limit %d",
			prime.ErrSupportTooLarge, x, n, maxSupport)
	}
	v := expr.Var(x)
	up, err := prime.Of(expr.And(expr.Not(v), f), maxSupport+1)
	if err != nil {
		return nil, err
	}
	down, err := prime.Of(expr.And(v, expr.Not(f)), maxSupport+1)
	if err != nil {
		return nil, err
	}
	return append(up, down...), nil
}

// patterns computes the forbidden patterns of every component of n in
// parallel, in the order of ids.  Components whose rule is wider than
// opts.patternSupport() get no patterns and are marked in wide.
func patterns(ctx context.Context, n Network, ids []expr.ID, opts *Options) (pats []prime.Cover, wide []bool, err error) {
	pats = make([]prime.Cover, len(ids))
	wide = make([]bool, len(ids))
	limit := opts.patternSupport()
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := n.Rule(id)
			if len(f.Support()) > limit {
				wide[i] = true
				return nil
			}
			c, err := Patterns(id, f, limit)
			if err != nil {
				return err
			}
			pats[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return pats, wide, nil
}

// encoding summarizes what encode added to a clause sink.
type encoding struct {
	vs       Vars
	clauses  int
	circuits int
	// some component is unstable in every state, nothing was added.
	empty bool
}

// encode adds to dst a CNF over NewVars(ids) whose models are the stable
// states of n.  Narrow rules contribute one clause per forbidden pattern,
// wide ones a Tseitin encoding of x <=> f.
func encode(ctx context.Context, n Network, ids []expr.ID, dst inter.Adder, opts *Options) (*encoding, error) {
	pats, wide, err := patterns(ctx, n, ids, opts)
	if err != nil {
		return nil, err
	}
	enc := &encoding{vs: NewVars(ids)}
	for _, c := range pats {
		for _, p := range c {
			if len(p) == 0 {
				enc.empty = true
				return enc, nil
			}
		}
	}
	for _, c := range pats {
		for _, p := range c {
			block(dst, enc.vs, p)
			enc.clauses++
		}
	}
	var rest []expr.ID
	for i, id := range ids {
		if wide[i] {
			rest = append(rest, id)
		}
	}
	if len(rest) > 0 {
		encodeCircuit(n, ids, rest, dst, enc.vs)
		enc.circuits = len(rest)
	}
	return enc, nil
}

// encodeCircuit adds to dst a Tseitin encoding of x <=> f for every
// component x of wide, over the component variables vs.
func encodeCircuit(n Network, ids, wide []expr.ID, dst inter.Adder, vs Vars) {
	c := NewCompiler(ids)
	rn := &renumber{
		dst: dst,
		ins: make(map[z.Var]z.Var, len(ids)),
		off: z.Var(len(ids))}
	for _, id := range ids {
		rn.ins[c.In(id).Var()] = vs[id]
	}
	roots := make([]z.Lit, len(wide))
	for i, id := range wide {
		x, f := c.In(id), c.Lit(n.Rule(id))
		roots[i] = c.C.Or(c.C.And(x, f), c.C.And(x.Not(), f.Not()))
	}
	// the constant variable is asserted by ToCnfFrom.
	c.C.ToCnfFrom(rn, roots...)
	for _, m := range roots {
		rn.unit(m)
	}
}

// renumber forwards the clauses of a circuit to dst, mapping circuit inputs
// to component variables and moving every other circuit variable above
// them.
type renumber struct {
	dst inter.Adder
	ins map[z.Var]z.Var
	off z.Var
}

func (r *renumber) Add(m z.Lit) {
	if m == z.LitNull {
		r.dst.Add(m)
		return
	}
	v, ok := r.ins[m.Var()]
	if !ok {
		v = m.Var() + r.off
	}
	if m.IsPos() {
		r.dst.Add(v.Pos())
	} else {
		r.dst.Add(v.Neg())
	}
}

func (r *renumber) unit(m z.Lit) {
	r.Add(m)
	r.Add(z.LitNull)
}

// Encode adds to dst a CNF whose models are exactly the stable states of n
// and returns the variables used for the components.  Rules with at most
// maxSupport inputs (DefaultPatternSupport if 0) contribute one clause per
// forbidden pattern, wider ones a circuit over extra variables.
//
// If some component can never be stable, the CNF is the empty clause.
func Encode(n Network, dst inter.Adder, maxSupport int) (Vars, error) {
	ids := n.Components()
	if err := checkRules(n, ids); err != nil {
		return nil, err
	}
	opts := &Options{MaxSupport: maxSupport, Workers: 1}
	enc, err := encode(context.Background(), n, ids, dst, opts)
	if err != nil {
		return nil, err
	}
	if enc.empty {
		dst.Add(z.LitNull)
	}
	return enc.vs, nil
}

// block adds the clause forbidding pattern p.
func block(dst inter.Adder, vs Vars, p prime.Implicant) {
	for _, m := range p {
		dst.Add(vs.Lit(m.ID, !m.Value))
	}
	dst.Add(z.LitNull)
}

func solveClauses(ctx context.Context, n Network, ids []expr.ID, opts *Options) ([]State, error) {
	if len(ids) == 0 {
		return []State{{}}, nil
	}
	g := gini.NewV(len(ids))
	enc, err := encode(ctx, n, ids, g, opts)
	if err != nil {
		return nil, err
	}
	if enc.empty {
		return nil, nil
	}
	opts.logger().Debug("clause encoding",
		slog.Int("components", len(ids)),
		slog.Int("clauses", enc.clauses),
		slog.Int("circuits", enc.circuits))
	lits := make([]z.Lit, len(ids))
	for i, id := range ids {
		lits[i] = enc.vs[id].Pos()
	}
	return enumerate(ctx, g, ids, lits, opts)
}

// enumerate collects the models of g restricted to lits, blocking each one
// found, until g is unsatisfiable or opts.Max is reached.
func enumerate(ctx context.Context, g *gini.Gini, ids []expr.ID, lits []z.Lit, opts *Options) ([]State, error) {
	for id, b := range opts.Restrict {
		for i, v := range ids {
			if v == id {
				m := lits[i]
				if !b {
					m = m.Not()
				}
				g.Add(m)
				g.Add(z.LitNull)
			}
		}
	}
	var states []State
	for !opts.full(states) {
		r, err := solve(ctx, g)
		if err != nil {
			return nil, err
		}
		if r != 1 {
			break
		}
		s := make(State, len(ids))
		for i, id := range ids {
			m := lits[i]
			v := g.Value(m)
			s[id] = v
			if v {
				g.Add(m.Not())
			} else {
				g.Add(m)
			}
		}
		g.Add(z.LitNull)
		states = append(states, s)
	}
	return states, nil
}

// solve runs g, in the background if ctx can be cancelled.
func solve(ctx context.Context, g *gini.Gini) (int, error) {
	if ctx.Done() == nil {
		return g.Solve(), nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s := g.GoSolve()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		if r, done := s.Test(); done {
			return r, nil
		}
		select {
		case <-ctx.Done():
			s.Stop()
			return 0, ctx.Err()
		case <-tick.C:
		}
	}
}
