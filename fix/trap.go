// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package fix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
	"golang.org/x/sync/errgroup"

	"github.com/go-air/regnet/expr"
	"github.com/go-air/regnet/prime"
)

// ErrUnknownTrapMode is returned for an unsupported TrapMode value.
var ErrUnknownTrapMode = errors.New("fix: unknown trap space mode")

// Space is a subspace of the states of a network.  Components in the map
// are fixed to their value, the others are free.
type Space map[expr.ID]bool

// Key returns the values of ids in s as a string of '0', '1' and '-' for
// free components.
func (s Space) Key(ids []expr.ID) string {
	var sb strings.Builder
	sb.Grow(len(ids))
	for _, id := range ids {
		b, ok := s[id]
		switch {
		case !ok:
			sb.WriteByte('-')
		case b:
			sb.WriteByte('1')
		default:
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Contains returns whether state st lies in s.
func (s Space) Contains(st State) bool {
	for id, b := range s {
		if st[id] != b {
			return false
		}
	}
	return true
}

// TrapMode selects which trap spaces TrapSpaces reports.
type TrapMode int

const (
	// Terminal trap spaces are minimal: they contain no other trap space.
	Terminal TrapMode = iota
	// All reports every trap space, the whole state space included.
	All
	// Elementary trap spaces are maximal among those fixing at least one
	// component.
	Elementary
)

func (m TrapMode) String() string {
	switch m {
	case Terminal:
		return "terminal"
	case All:
		return "all"
	case Elementary:
		return "elementary"
	}
	return fmt.Sprintf("trapmode(%d)", int(m))
}

// ParseTrapMode returns the mode named s.
func ParseTrapMode(s string) (TrapMode, error) {
	switch strings.ToLower(s) {
	case "", "terminal":
		return Terminal, nil
	case "all":
		return All, nil
	case "elementary":
		return Elementary, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTrapMode, s)
}

// TrapOptions control TrapSpaces.
type TrapOptions struct {
	Mode TrapMode
	// Percolate keeps only spaces where no free component has a rule
	// which is constant over the space.
	Percolate bool
	// Max stops enumeration after that many spaces.  0 means no limit.
	Max int
	// MaxSupport bounds the support of rules, see prime.Of.
	MaxSupport int
	// Workers bounds the number of rules processed in parallel.  0 means
	// one per rule.
	Workers int
	Logger  *slog.Logger
}

func (o *TrapOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// trapVars holds two solver variables per component: one true when the
// component is fixed to 1, the other when it is fixed to 0.
type trapVars struct {
	one, zero Vars
}

func newTrapVars(ids []expr.ID) trapVars {
	tv := trapVars{one: make(Vars, len(ids)), zero: make(Vars, len(ids))}
	for i, id := range ids {
		tv.one[id] = z.Var(2*i + 1)
		tv.zero[id] = z.Var(2*i + 2)
	}
	return tv
}

// fixed returns the literal stating that id is fixed to b.
func (tv trapVars) fixed(id expr.ID, b bool) z.Lit {
	if b {
		return tv.one[id].Pos()
	}
	return tv.zero[id].Pos()
}

// restrict forbids fixing x to b while some implicant of the rule taking x
// to !b is compatible with the space.
func (tv trapVars) restrict(dst inter.Adder, x expr.ID, b bool, c prime.Cover) {
	for _, p := range c {
		dst.Add(tv.fixed(x, b).Not())
		for _, m := range p {
			dst.Add(tv.fixed(m.ID, !m.Value))
		}
		dst.Add(z.LitNull)
	}
}

// enforce fixes x to b whenever the space fixes every literal of an
// implicant of the rule taking x to b.
func (tv trapVars) enforce(dst inter.Adder, x expr.ID, b bool, c prime.Cover) {
	for _, p := range c {
		dst.Add(tv.fixed(x, b))
		for _, m := range p {
			dst.Add(tv.fixed(m.ID, m.Value).Not())
		}
		dst.Add(z.LitNull)
	}
}

// rulePrimes computes the prime implicants of every rule of n and of its
// negation, in parallel.
func rulePrimes(ctx context.Context, n Network, ids []expr.ID, opts *TrapOptions) (pos, neg []prime.Cover, err error) {
	pos = make([]prime.Cover, len(ids))
	neg = make([]prime.Cover, len(ids))
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
			c, err := prime.Of(f, opts.MaxSupport)
			if err != nil {
				return fmt.Errorf("rule of %d: %w", id, err)
			}
			pos[i] = c
			if neg[i], err = prime.Of(expr.Not(f), opts.MaxSupport); err != nil {
				return fmt.Errorf("rule of %d: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return pos, neg, nil
}

// TrapSpaces returns the trap spaces of n selected by opts.Mode.  A trap
// space is a subspace which no update leaves: every fixed component has a
// rule constant and equal to its value over the space.  The result is
// sorted by Key over n.Components().
//
// If ctx is cancelled the search is stopped and ctx.Err() is returned
// without any spaces.
func TrapSpaces(ctx context.Context, n Network, opts TrapOptions) ([]Space, error) {
	ids := n.Components()
	if err := checkRules(n, ids); err != nil {
		return nil, err
	}
	switch opts.Mode {
	case Terminal, All, Elementary:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTrapMode, opts.Mode)
	}
	if len(ids) == 0 {
		if opts.Mode == Elementary {
			return nil, nil
		}
		return []Space{{}}, nil
	}
	log := opts.logger()
	start := time.Now()

	pos, neg, err := rulePrimes(ctx, n, ids, &opts)
	if err != nil {
		return nil, err
	}
	tv := newTrapVars(ids)
	g := gini.NewV(2 * len(ids))
	for i, id := range ids {
		g.Add(tv.fixed(id, true).Not())
		g.Add(tv.fixed(id, false).Not())
		g.Add(z.LitNull)
		tv.restrict(g, id, false, pos[i])
		tv.restrict(g, id, true, neg[i])
		if opts.Percolate {
			tv.enforce(g, id, true, pos[i])
			tv.enforce(g, id, false, neg[i])
		}
	}
	lits := make([]z.Lit, 0, 2*len(ids))
	for _, id := range ids {
		lits = append(lits, tv.fixed(id, true), tv.fixed(id, false))
	}

	var sets [][]bool
	switch opts.Mode {
	case All:
		sets, err = allSets(ctx, g, lits, opts.Max)
	case Terminal:
		sets, err = extremalSets(ctx, g, lits, true, opts.Max)
	case Elementary:
		// the whole state space is excluded.
		for _, m := range lits {
			g.Add(m)
		}
		g.Add(z.LitNull)
		sets, err = extremalSets(ctx, g, lits, false, opts.Max)
	}
	if err != nil {
		return nil, err
	}
	res := make([]Space, len(sets))
	for k, vals := range sets {
		s := Space{}
		for i, id := range ids {
			switch {
			case vals[2*i]:
				s[id] = true
			case vals[2*i+1]:
				s[id] = false
			}
		}
		res[k] = s
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Key(ids) < res[j].Key(ids)
	})
	log.Debug("trap spaces",
		slog.String("mode", opts.Mode.String()),
		slog.Bool("percolate", opts.Percolate),
		slog.Int("components", len(ids)),
		slog.Int("spaces", len(res)),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

// allSets lists the models of g over lits.
func allSets(ctx context.Context, g *gini.Gini, lits []z.Lit, most int) ([][]bool, error) {
	atoms := make([]expr.ID, len(lits))
	for i := range atoms {
		atoms[i] = expr.ID(i)
	}
	states, err := enumerate(ctx, g, atoms, lits, &Options{Max: most})
	if err != nil {
		return nil, err
	}
	res := make([][]bool, len(states))
	for k, s := range states {
		vals := make([]bool, len(lits))
		for i, a := range atoms {
			vals[i] = s[a]
		}
		res[k] = vals
	}
	return res, nil
}

// extremalSets lists the models of g whose set of true literals among lits
// is maximal (or minimal if !maximal) under inclusion.  Each model found is
// grown (or shrunk) until no model extends it, then everything it covers
// is blocked.
func extremalSets(ctx context.Context, g *gini.Gini, lits []z.Lit, maximal bool, most int) ([][]bool, error) {
	var res [][]bool
	values := func() []bool {
		vals := make([]bool, len(lits))
		for i, m := range lits {
			vals[i] = g.Value(m)
		}
		return vals
	}
	// improve adds a clause asking for one literal outside cur (inside if
	// minimal), guarded by act unless act is LitNull.  It returns false and
	// adds nothing if that clause would be empty.
	improve := func(cur []bool, act z.Lit) bool {
		var cl []z.Lit
		for i, m := range lits {
			if cur[i] != maximal {
				if maximal {
					cl = append(cl, m)
				} else {
					cl = append(cl, m.Not())
				}
			}
		}
		if act != z.LitNull {
			cl = append(cl, act.Not())
		}
		if len(cl) == 0 {
			return false
		}
		for _, m := range cl {
			g.Add(m)
		}
		g.Add(z.LitNull)
		return true
	}
	for most <= 0 || len(res) < most {
		r, err := solve(ctx, g)
		if err != nil {
			return nil, err
		}
		if r != 1 {
			break
		}
		cur := values()
		for {
			act := (g.MaxVar() + 1).Pos()
			improve(cur, act)
			var ms []z.Lit
			for i, m := range lits {
				switch {
				case maximal && cur[i]:
					ms = append(ms, m)
				case !maximal && !cur[i]:
					ms = append(ms, m.Not())
				}
			}
			g.Assume(append(ms, act)...)
			r, err = solve(ctx, g)
			if err != nil {
				return nil, err
			}
			g.Add(act.Not())
			g.Add(z.LitNull)
			if r != 1 {
				break
			}
			cur = values()
		}
		res = append(res, cur)
		if !improve(cur, z.LitNull) {
			// cur covers every model.
			break
		}
	}
	return res, nil
}
