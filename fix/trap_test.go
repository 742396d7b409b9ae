// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package fix_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/go-air/regnet/expr"
	"github.com/go-air/regnet/fix"
	"github.com/go-air/regnet/gen"
	"github.com/go-air/regnet/prime"
)

func spaceKeys(n fix.Network, spaces []fix.Space) []string {
	ids := n.Components()
	res := make([]string, len(spaces))
	for i, s := range spaces {
		res[i] = s.Key(ids)
	}
	return res
}

// states lists the states of n lying in s.
func states(n fix.Network, s fix.Space) []fix.State {
	var free []expr.ID
	for _, id := range n.Components() {
		if _, ok := s[id]; !ok {
			free = append(free, id)
		}
	}
	var res []fix.State
	for m := 0; m < 1<<uint(len(free)); m++ {
		st := fix.State{}
		for id, b := range s {
			st[id] = b
		}
		for i, id := range free {
			st[id] = m&(1<<uint(i)) != 0
		}
		res = append(res, st)
	}
	return res
}

// isTrap checks that no update of a fixed component leaves s and, if
// percolated, that no free component has a rule constant over s.
func isTrap(n fix.Network, s fix.Space, percolated bool) bool {
	sts := states(n, s)
	for _, id := range n.Components() {
		f := n.Rule(id)
		var seen [2]bool
		for _, st := range sts {
			v := f.Eval(func(v expr.ID) bool { return st[v] })
			if b, ok := s[id]; ok && v != b {
				return false
			}
			if v {
				seen[1] = true
			} else {
				seen[0] = true
			}
		}
		if _, ok := s[id]; !ok && percolated && seen[0] != seen[1] {
			return false
		}
	}
	return true
}

// inside returns whether a is a subspace of b.
func inside(a, b fix.Space) bool {
	for id, v := range b {
		if w, ok := a[id]; !ok || w != v {
			return false
		}
	}
	return true
}

// bruteTraps lists the trap spaces of n selected by mode by checking each
// of the 3^n subspaces.
func bruteTraps(n fix.Network, mode fix.TrapMode, percolated bool) []string {
	ids := n.Components()
	var all []fix.Space
	total := 1
	for range ids {
		total *= 3
	}
	for m := 0; m < total; m++ {
		s := fix.Space{}
		k := m
		for _, id := range ids {
			switch k % 3 {
			case 1:
				s[id] = false
			case 2:
				s[id] = true
			}
			k /= 3
		}
		if isTrap(n, s, percolated) {
			all = append(all, s)
		}
	}
	var res []string
	for _, s := range all {
		keep := true
		switch mode {
		case fix.Terminal:
			for _, o := range all {
				if len(o) > len(s) && inside(o, s) {
					keep = false
				}
			}
		case fix.Elementary:
			if len(s) == 0 {
				keep = false
			}
			for _, o := range all {
				if len(o) > 0 && len(o) < len(s) && inside(s, o) {
					keep = false
				}
			}
		}
		if keep {
			res = append(res, s.Key(ids))
		}
	}
	sort.Strings(res)
	return res
}

func TestTrapSpacesSmall(t *testing.T) {
	x0, x1 := expr.Var(0), expr.Var(1)
	for _, tc := range []struct {
		name      string
		n         net
		mode      fix.TrapMode
		percolate bool
		want      []string
	}{
		{"mutual activation", net{x1, x0}, fix.All, false, []string{"--", "00", "11"}},
		{"mutual activation", net{x1, x0}, fix.Terminal, false, []string{"00", "11"}},
		{"mutual activation", net{x1, x0}, fix.Elementary, false, []string{"00", "11"}},
		{"mutual inhibition", net{expr.Not(x1), expr.Not(x0)}, fix.All, false, []string{"--", "01", "10"}},
		{"self inhibition", net{expr.Not(x0)}, fix.All, false, []string{"-"}},
		{"self inhibition", net{expr.Not(x0)}, fix.Terminal, false, []string{"-"}},
		{"self inhibition", net{expr.Not(x0)}, fix.Elementary, false, nil},
		{"follower", net{x0, x0}, fix.All, false, []string{"--", "0-", "00", "1-", "11"}},
		{"follower", net{x0, x0}, fix.All, true, []string{"--", "00", "11"}},
		{"follower", net{x0, x0}, fix.Elementary, false, []string{"0-", "1-"}},
		{"follower", net{x0, x0}, fix.Elementary, true, []string{"00", "11"}},
		{"follower", net{x0, x0}, fix.Terminal, true, []string{"00", "11"}},
		{"constant", net{expr.True, expr.And(x0, x1)}, fix.All, true, []string{"1-", "10", "11"}},
		{"empty", net{}, fix.All, false, []string{""}},
		{"empty", net{}, fix.Elementary, false, nil},
	} {
		opts := fix.TrapOptions{Mode: tc.mode, Percolate: tc.percolate}
		spaces, err := fix.TrapSpaces(context.Background(), tc.n, opts)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.name, tc.mode, err)
		}
		if got := spaceKeys(tc.n, spaces); !sameKeys(got, tc.want) {
			t.Errorf("%s/%s percolate=%t: got %v want %v", tc.name, tc.mode, tc.percolate, got, tc.want)
		}
	}
}

func TestTrapSpacesRandom(t *testing.T) {
	gen.Seed(31)
	for i := 0; i < 30; i++ {
		m := gen.Network(5, 3, 3)
		for _, mode := range []fix.TrapMode{fix.All, fix.Terminal, fix.Elementary} {
			for _, perc := range []bool{false, true} {
				opts := fix.TrapOptions{Mode: mode, Percolate: perc, Workers: 2}
				spaces, err := fix.TrapSpaces(context.Background(), m, opts)
				if err != nil {
					t.Fatal(err)
				}
				want := bruteTraps(m, mode, perc)
				if got := spaceKeys(m, spaces); !sameKeys(got, want) {
					t.Errorf("%s percolate=%t: got %v want %v\n%s", mode, perc, got, want, m)
				}
			}
		}
	}
}

func TestTrapSpacesStable(t *testing.T) {
	// stable states are exactly the terminal trap spaces fixing everything.
	gen.Seed(37)
	for i := 0; i < 20; i++ {
		m := gen.Network(6, 3, 3)
		ids := m.Components()
		spaces, err := fix.TrapSpaces(context.Background(), m, fix.TrapOptions{})
		if err != nil {
			t.Fatal(err)
		}
		var got []string
		for _, s := range spaces {
			if len(s) == len(ids) {
				got = append(got, s.Key(ids))
			}
		}
		if want := bruteForce(m); !sameKeys(got, want) {
			t.Errorf("got %v want %v\n%s", got, want, m)
		}
	}
}

func TestTrapSpacesMax(t *testing.T) {
	m := gen.Switch(3)
	for _, mode := range []fix.TrapMode{fix.All, fix.Terminal, fix.Elementary} {
		spaces, err := fix.TrapSpaces(context.Background(), m, fix.TrapOptions{Mode: mode, Max: 2})
		if err != nil {
			t.Fatal(err)
		}
		if len(spaces) != 2 {
			t.Errorf("%s: max 2 gave %d spaces", mode, len(spaces))
		}
	}
	// 3 switches have 2^3 terminal spaces and 3^3 in all.
	spaces, err := fix.TrapSpaces(context.Background(), m, fix.TrapOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(spaces) != 8 {
		t.Errorf("%d terminal spaces", len(spaces))
	}
	spaces, err = fix.TrapSpaces(context.Background(), m, fix.TrapOptions{Mode: fix.All})
	if err != nil {
		t.Fatal(err)
	}
	if len(spaces) != 27 {
		t.Errorf("%d spaces", len(spaces))
	}
}

func TestTrapSpacesErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := fix.TrapSpaces(ctx, net{expr.Var(3)}, fix.TrapOptions{}); !errors.Is(err, fix.ErrUnknownComponent) {
		t.Errorf("dangling reference: %v", err)
	}
	if _, err := fix.TrapSpaces(ctx, net{}, fix.TrapOptions{Mode: fix.TrapMode(7)}); !errors.Is(err, fix.ErrUnknownTrapMode) {
		t.Errorf("unknown mode: %v", err)
	}
	if _, err := fix.ParseTrapMode("maximal"); !errors.Is(err, fix.ErrUnknownTrapMode) {
		t.Errorf("parse unknown mode: %v", err)
	}
	for _, mode := range []fix.TrapMode{fix.All, fix.Terminal, fix.Elementary} {
		p, err := fix.ParseTrapMode(mode.String())
		if err != nil || p != mode {
			t.Errorf("parse %s: %s %v", mode, p, err)
		}
	}
	if _, err := fix.TrapSpaces(ctx, wideAnd(5), fix.TrapOptions{MaxSupport: 4}); !errors.Is(err, prime.ErrSupportTooLarge) {
		t.Errorf("wide rule: %v", err)
	}
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	spaces, err := fix.TrapSpaces(cctx, gen.Switch(2), fix.TrapOptions{Mode: fix.All})
	if !errors.Is(err, context.Canceled) || spaces != nil {
		t.Errorf("cancelled: %v %v", spaces, err)
	}
}

func TestSpace(t *testing.T) {
	ids := []expr.ID{0, 1, 2}
	s := fix.Space{0: true, 2: false}
	if k := s.Key(ids); k != "1-0" {
		t.Errorf("key %s", k)
	}
	if !s.Contains(fix.State{0: true, 1: true, 2: false}) {
		t.Error("state not contained")
	}
	if s.Contains(fix.State{0: false, 1: true, 2: false}) {
		t.Error("state contained")
	}
}
