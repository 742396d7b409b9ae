// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package model

import (
	"fmt"
	"log/slog"

	"github.com/go-air/regnet/expr"
)

// Eliminate removes the component named name from m, substituting its rule
// for its variable in the rule of every component which depends on it.
//
// Let v be the removed component with rule f.
//
// If f depends on v, v regulates itself and no v-free substitute preserves
// the stable states in general.  With keepSelfLink, Eliminate then fails
// with ErrAutoregulated.  Otherwise f is first replaced by
// expr.BreakSelfLink(f, v).
//
// A component c with rule g becomes g[v := f].  When c itself occurs in f
// and g did not depend on c, the substitution creates a self dependency of
// c through the removed v.  With keepSelfLink it is kept, and the stable
// states of the result are exactly those of m without v.  Otherwise it is
// broken with expr.BreakSelfLink, and stable states may differ.
//
// Rewritten rules are simplified.  On error m is unchanged.
func (m *Model) Eliminate(name string, keepSelfLink bool) error {
	v, err := m.ID(name)
	if err != nil {
		return err
	}
	f := m.byID[v].rule
	if f.Mentions(v) {
		if keepSelfLink {
			return fmt.Errorf("%w: %q", ErrAutoregulated, name)
		}
		f = expr.BreakSelfLink(f, v)
		m.log.Warn("breaking self link of eliminated component",
			slog.String("component", name))
	}

	rules := make(map[expr.ID]*expr.Expr)
	for _, id := range m.order {
		if id == v {
			continue
		}
		g := m.byID[id].rule
		r, ch := expr.Substitute(g, v, f)
		if !ch {
			continue
		}
		if !keepSelfLink && f.Mentions(id) && !g.Mentions(id) {
			r = expr.BreakSelfLink(r, id)
			m.log.Debug("breaking new self link",
				slog.String("component", m.byID[id].name),
				slog.String("through", name))
		}
		if s, ok := expr.Simplify(r); ok {
			r = s
		}
		rules[id] = r
	}

	for id, r := range rules {
		m.byID[id].rule = r
	}
	m.remove(v)
	for _, id := range m.order {
		if m.byID[id].rule.Mentions(v) {
			panic(fmt.Sprintf("model: rule of %q references eliminated component %q", m.byID[id].name, name))
		}
	}
	m.log.Debug("eliminated component",
		slog.String("component", name),
		slog.Int("rewritten", len(rules)),
		slog.Bool("keep_self_link", keepSelfLink))
	return nil
}

func (m *Model) remove(v expr.ID) {
	c := m.byID[v]
	delete(m.byID, v)
	delete(m.byName, c.name)
	for i, id := range m.order {
		if id == v {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
