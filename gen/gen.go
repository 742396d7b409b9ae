// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package gen

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/go-air/regnet/expr"
	"github.com/go-air/regnet/model"
)

/// make the rng seedable
var rng = rand.New(rand.NewSource(33))
var mu sync.Mutex

func Seed(s int64) {
	mu.Lock()
	defer mu.Unlock()
	rng = rand.New(rand.NewSource(s))
}

// Expr generates a random expression of at most the given depth over the
// variables ids.  If ids is empty, the result is constant.
func Expr(ids []expr.ID, depth int) *expr.Expr {
	mu.Lock()
	defer mu.Unlock()
	return randExpr(ids, depth)
}

func randExpr(ids []expr.ID, depth int) *expr.Expr {
	if len(ids) == 0 {
		return expr.Const(rng.Intn(2) == 1)
	}
	if depth <= 0 {
		switch rng.Intn(12) {
		case 0:
			return expr.Const(rng.Intn(2) == 1)
		default:
			return expr.Var(ids[rng.Intn(len(ids))])
		}
	}
	switch rng.Intn(5) {
	case 0:
		return expr.Not(randExpr(ids, depth-1))
	case 1:
		return randExpr(ids, 0)
	case 2:
		// equal operands exercise idempotence and complementation
		a := randExpr(ids, depth-1)
		if rng.Intn(2) == 0 {
			return expr.And(a, expr.Not(a))
		}
		return expr.Or(a, a)
	case 3:
		return expr.And(randExpr(ids, depth-1), randExpr(ids, depth-1))
	}
	return expr.Or(randExpr(ids, depth-1), randExpr(ids, depth-1))
}

// IDs returns the ids 0..n-1.
func IDs(n int) []expr.ID {
	ids := make([]expr.ID, n)
	for i := range ids {
		ids[i] = expr.ID(i)
	}
	return ids
}

// Name gives the name of the i'th component of generated networks.
func Name(i int) string {
	return fmt.Sprintf("x%d", i)
}

// Network generates a random network with n components named by Name.
// Each rule has depth at most depth and depends on at most maxIn
// components.
func Network(n, maxIn, depth int) *model.Model {
	m := model.New()
	ids := make([]expr.ID, n)
	for i := 0; i < n; i++ {
		ids[i] = must(m.Add(Name(i)))
	}
	mu.Lock()
	defer mu.Unlock()
	for _, id := range ids {
		k := 1 + rng.Intn(maxIn)
		ins := make([]expr.ID, k)
		for j := range ins {
			ins[j] = ids[rng.Intn(n)]
		}
		if err := m.SetRuleID(id, randExpr(ins, depth)); err != nil {
			panic(err)
		}
	}
	return m
}

// Cycle generates a ring x0 <- x(n-1), x1 <- x0, ... x(n-1) <- x(n-2).
// If negative, x0 takes the negation of x(n-1).  A positive cycle has two
// stable states, all false and all true, a negative cycle has none.
func Cycle(n int, negative bool) *model.Model {
	m := model.New()
	ids := make([]expr.ID, n)
	for i := 0; i < n; i++ {
		ids[i] = must(m.Add(Name(i)))
	}
	for i := 0; i < n; i++ {
		r := expr.Var(ids[(i+n-1)%n])
		if i == 0 && negative {
			r = expr.Not(r)
		}
		if err := m.SetRuleID(ids[i], r); err != nil {
			panic(err)
		}
	}
	return m
}

// Switch generates n independent toggle switches, pairs of mutually
// repressing components a_i <- !b_i, b_i <- !a_i.  It has 2^n stable
// states.
func Switch(n int) *model.Model {
	m := model.New()
	for i := 0; i < n; i++ {
		a := must(m.Add(fmt.Sprintf("a%d", i)))
		b := must(m.Add(fmt.Sprintf("b%d", i)))
		if err := m.SetRuleID(a, expr.Not(expr.Var(b))); err != nil {
			panic(err)
		}
		if err := m.SetRuleID(b, expr.Not(expr.Var(a))); err != nil {
			panic(err)
		}
	}
	return m
}

func must(id expr.ID, err error) expr.ID {
	if err != nil {
		panic(err)
	}
	return id
}
