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

	"github.com/go-air/regnet/expr"
)

var (
	// ErrUnknownComponent is returned when a rule references a component
	// which is not part of the network.
	ErrUnknownComponent = errors.New("fix: rule references unknown component")

	// ErrUnknownBackend is returned for an unsupported Backend value.
	ErrUnknownBackend = errors.New("fix: unknown backend")
)

// Network is a set of components, each with an update rule.
type Network interface {
	// Components returns the components in a stable order.
	Components() []expr.ID
	// Rule returns the update rule of a component.
	Rule(id expr.ID) *expr.Expr
}

// State is a total assignment of a network's components.
type State map[expr.ID]bool

// Key returns the values of ids in s as a string of '0' and '1'.
func (s State) Key(ids []expr.ID) string {
	var sb strings.Builder
	sb.Grow(len(ids))
	for _, id := range ids {
		if s[id] {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Backend selects the procedure used to enumerate stable states.
type Backend int

const (
	// Auto leaves the choice to the caller's defaults, Solve uses Clauses.
	Auto Backend = iota
	// Clauses encodes the forbidden patterns given by prime implicants as
	// clauses of a CDCL solver.
	Clauses
	// Circuit Tseitin-encodes an and-inverter circuit of the stability
	// condition.
	Circuit
	// BDD builds a binary decision diagram of the stability condition.
	BDD
)

func (b Backend) String() string {
	switch b {
	case Auto:
		return "auto"
	case Clauses:
		return "clauses"
	case Circuit:
		return "circuit"
	case BDD:
		return "bdd"
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// ParseBackend returns the backend named s.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "clauses":
		return Clauses, nil
	case "circuit":
		return Circuit, nil
	case "bdd":
		return BDD, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Options control Solve.
type Options struct {
	Backend Backend
	// Max stops enumeration after that many states.  0 means no limit.
	Max int
	// Restrict, if not empty, keeps only states extending it.
	Restrict map[expr.ID]bool
	// MaxSupport is the widest rule the Clauses backend turns into
	// forbidden patterns, DefaultPatternSupport if 0.  Wider rules are
	// Tseitin-encoded.
	MaxSupport int
	// Workers bounds the number of rules processed in parallel.  0 means
	// one per rule.
	Workers int
	Logger  *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// pollInterval is how often a cancellable search checks its context.
const pollInterval = 5 * time.Millisecond

// Solve returns all the stable states of n: the total assignments under
// which every component has the value of its rule.  The result is
// deduplicated and sorted by Key over n.Components().
//
// Solve blocks until the enumeration is complete.  If ctx is cancelled the
// search is stopped and ctx.Err() is returned without any states.
func Solve(ctx context.Context, n Network, opts Options) ([]State, error) {
	ids := n.Components()
	if err := checkRules(n, ids); err != nil {
		return nil, err
	}
	for id := range opts.Restrict {
		if !contains(ids, id) {
			return nil, fmt.Errorf("%w: restriction on %d", ErrUnknownComponent, id)
		}
	}
	if opts.Backend == Auto {
		opts.Backend = Clauses
	}
	log := opts.logger()
	start := time.Now()

	var (
		states []State
		err    error
	)
	switch opts.Backend {
	case Clauses:
		states, err = solveClauses(ctx, n, ids, &opts)
	case Circuit:
		states, err = solveCircuit(ctx, n, ids, &opts)
	case BDD:
		states, err = solveBDD(ctx, n, ids, &opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	states = dedup(states, ids)
	log.Debug("stable states",
		slog.String("backend", opts.Backend.String()),
		slog.Int("components", len(ids)),
		slog.Int("states", len(states)),
		slog.Duration("elapsed", time.Since(start)))
	return states, nil
}

// IsStable returns whether s is a stable state of n.
func IsStable(n Network, s State) bool {
	for _, id := range n.Components() {
		if n.Rule(id).Eval(func(v expr.ID) bool { return s[v] }) != s[id] {
			return false
		}
	}
	return true
}

func checkRules(n Network, ids []expr.ID) error {
	known := make(map[expr.ID]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		for _, v := range n.Rule(id).Support() {
			if _, ok := known[v]; !ok {
				return fmt.Errorf("%w: rule of %d mentions %d", ErrUnknownComponent, id, v)
			}
		}
	}
	return nil
}

func contains(ids []expr.ID, id expr.ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func dedup(states []State, ids []expr.ID) []State {
	seen := make(map[string]struct{}, len(states))
	res := states[:0]
	for _, s := range states {
		k := s.Key(ids)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Key(ids) < res[j].Key(ids)
	})
	return res
}

func (o *Options) full(states []State) bool {
	return o.Max > 0 && len(states) >= o.Max
}
