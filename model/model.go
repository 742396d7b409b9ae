// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package model

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/go-air/regnet/expr"
)

var (
	// ErrUnknownName is returned when no component has the requested name.
	ErrUnknownName = errors.New("model: unknown component")

	// ErrNameCollision is returned when a name is already in use.
	ErrNameCollision = errors.New("model: name already in use")

	// ErrInvalidName is returned for empty or non UTF-8 names.
	ErrInvalidName = errors.New("model: invalid name")

	// ErrDangling is returned when a rule references a component which is
	// not in the model.
	ErrDangling = errors.New("model: rule references unknown component")

	// ErrAutoregulated is returned when eliminating a component whose rule
	// depends on itself while keeping self links.
	ErrAutoregulated = errors.New("model: component regulates itself")
)

type component struct {
	id   expr.ID
	name string
	rule *expr.Expr
}

// Component describes a component of a Model.
type Component struct {
	ID   expr.ID
	Name string
	Rule *expr.Expr
}

// Model is a Boolean network: an ordered set of named components, each
// with an update rule over the components of the model.
//
// Every variable of every rule refers to a component of the model.  Ids are
// given in creation order and are never reused, renaming a component keeps
// its id.
//
// A Model must not be modified concurrently with any other access.  Rules
// are immutable and may be shared freely.
type Model struct {
	order  []expr.ID
	byID   map[expr.ID]*component
	byName map[string]expr.ID
	next   expr.ID
	log    *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger of a Model.  The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// New creates an empty Model.
func New(opts ...Option) *Model {
	m := &Model{
		byID:   make(map[expr.ID]*component),
		byName: make(map[string]expr.ID),
		log:    slog.Default()}
	for _, o := range opts {
		o(m)
	}
	return m
}

func checkName(name string) error {
	if name == "" || !utf8.ValidString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Add creates a component named name and returns its id.  The rule of the
// new component is its own variable: it keeps its value until a rule is
// set.
func (m *Model) Add(name string) (expr.ID, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}
	if _, ok := m.byName[name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrNameCollision, name)
	}
	id := m.next
	m.next++
	m.byID[id] = &component{id: id, name: name, rule: expr.Var(id)}
	m.byName[name] = id
	m.order = append(m.order, id)
	return id, nil
}

// Ensure returns the id of the component named name, creating it if
// needed.
func (m *Model) Ensure(name string) (expr.ID, error) {
	if id, ok := m.byName[name]; ok {
		return id, nil
	}
	return m.Add(name)
}

// ID returns the id of the component named name.
func (m *Model) ID(name string) (expr.ID, error) {
	id, ok := m.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return id, nil
}

// Name returns the name of component id.
func (m *Model) Name(id expr.ID) (string, bool) {
	c, ok := m.byID[id]
	if !ok {
		return "", false
	}
	return c.name, true
}

// Namer returns an expr.Namer using the names of m.  Unknown ids use the
// default naming.
func (m *Model) Namer() expr.Namer {
	return func(id expr.ID) string {
		if n, ok := m.Name(id); ok {
			return n
		}
		return expr.DefaultNamer(id)
	}
}

// Len returns the number of components.
func (m *Model) Len() int {
	return len(m.order)
}

// Components returns the ids of the components in creation order.
func (m *Model) Components() []expr.ID {
	res := make([]expr.ID, len(m.order))
	copy(res, m.order)
	return res
}

// Component returns a description of component id.
func (m *Model) Component(id expr.ID) (Component, bool) {
	c, ok := m.byID[id]
	if !ok {
		return Component{}, false
	}
	return Component{ID: c.id, Name: c.name, Rule: c.rule}, true
}

// Rule returns the rule of component id, or nil if there is no such
// component.
func (m *Model) Rule(id expr.ID) *expr.Expr {
	c, ok := m.byID[id]
	if !ok {
		return nil
	}
	return c.rule
}

// Expr returns the rule of the component named name.  Expressions are
// immutable, the result can not be used to change m.
func (m *Model) Expr(name string) (*expr.Expr, error) {
	id, err := m.ID(name)
	if err != nil {
		return nil, err
	}
	return m.byID[id].rule, nil
}

// SetRule sets the rule of the component named name.  Every variable of
// rule must be a component of m.
func (m *Model) SetRule(name string, rule *expr.Expr) error {
	id, err := m.ID(name)
	if err != nil {
		return err
	}
	return m.SetRuleID(id, rule)
}

// SetRuleID is like SetRule for a component given by id.
func (m *Model) SetRuleID(id expr.ID, rule *expr.Expr) error {
	c, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownName, id)
	}
	for _, v := range rule.Support() {
		if _, ok := m.byID[v]; !ok {
			return fmt.Errorf("%w: %d in rule of %q", ErrDangling, v, c.name)
		}
	}
	c.rule = rule
	return nil
}

// Fix replaces the rule of the component named name by the constant value,
// locking it (a knockout when value is false).
func (m *Model) Fix(name string, value bool) error {
	return m.SetRule(name, expr.Const(value))
}

// Rename changes the name of component source to target.  Ids, and so all
// rules, are unchanged.
func (m *Model) Rename(source, target string) error {
	id, err := m.ID(source)
	if err != nil {
		return err
	}
	if source == target {
		return nil
	}
	if err := checkName(target); err != nil {
		return err
	}
	if _, ok := m.byName[target]; ok {
		return fmt.Errorf("%w: %q", ErrNameCollision, target)
	}
	delete(m.byName, source)
	m.byName[target] = id
	m.byID[id].name = target
	m.log.Debug("renamed component",
		slog.String("from", source),
		slog.String("to", target))
	return nil
}

// Check verifies that every rule references only components of m.
func (m *Model) Check() error {
	for _, id := range m.order {
		c := m.byID[id]
		for _, v := range c.rule.Support() {
			if _, ok := m.byID[v]; !ok {
				return fmt.Errorf("%w: %d in rule of %q", ErrDangling, v, c.name)
			}
		}
	}
	return nil
}

// Copy returns a Model with the same components, ids and rules as m, which
// can be modified independently.
func (m *Model) Copy() *Model {
	o := &Model{
		order:  make([]expr.ID, len(m.order)),
		byID:   make(map[expr.ID]*component, len(m.byID)),
		byName: make(map[string]expr.ID, len(m.byName)),
		next:   m.next,
		log:    m.log}
	copy(o.order, m.order)
	for id, c := range m.byID {
		cc := *c
		o.byID[id] = &cc
	}
	for n, id := range m.byName {
		o.byName[n] = id
	}
	return o
}

// String lists the components in creation order as "name, rule" lines.
func (m *Model) String() string {
	var sb strings.Builder
	namer := m.Namer()
	for _, id := range m.order {
		c := m.byID[id]
		fmt.Fprintf(&sb, "%s, %s\n", c.name, c.rule.Format(namer))
	}
	return sb.String()
}
