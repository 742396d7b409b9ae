// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package handle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-air/regnet/config"
	"github.com/go-air/regnet/expr"
	"github.com/go-air/regnet/fix"
	"github.com/go-air/regnet/model"
)

var (
	// ErrInvalidHandle is returned for a handle which was never issued.
	ErrInvalidHandle = errors.New("handle: invalid handle")

	// ErrReleased is returned when a handle is used or released after it
	// has been released.
	ErrReleased = errors.New("handle: handle already released")

	// ErrKind is returned when a handle does not refer to the expected kind
	// of object.
	ErrKind = errors.New("handle: wrong kind of handle")

	// ErrLoad is returned when a model can not be loaded.
	ErrLoad = errors.New("handle: failed to load model")

	// ErrNoLoader is returned by LoadModel on a Registry without a Loader.
	ErrNoLoader = errors.New("handle: no model loader")
)

// Handle identifies an object owned by a Registry.  The zero Handle is
// never issued.
type Handle uint64

// Kind is the kind of object a Handle refers to.
type Kind uint8

const (
	KindExpr Kind = iota
	KindModel
	KindString
	nKinds
)

func (k Kind) String() string {
	switch k {
	case KindExpr:
		return "expr"
	case KindModel:
		return "model"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Loader builds a model from a named resource.  It must not return a
// partially built model together with an error.
type Loader interface {
	Load(name string) (*model.Model, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(name string) (*model.Model, error)

// Load calls f(name).
func (f LoaderFunc) Load(name string) (*model.Model, error) {
	return f(name)
}

type modelEntry struct {
	mu sync.Mutex
	m  *model.Model
}

type entry struct {
	kind Kind
	e    *expr.Expr
	m    *modelEntry
	s    string
}

type metrics struct {
	created  *prometheus.CounterVec
	released *prometheus.CounterVec
	live     *prometheus.GaugeVec
}

// newMetrics creates the handle metrics and registers them on reg.  Metrics
// already registered by another Registry are shared with it.
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		created: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regnet_handles_created_total",
			Help: "Total handles created by kind",
		}, []string{"kind"})),
		released: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regnet_handles_released_total",
			Help: "Total handles released by kind",
		}, []string{"kind"})),
		live: register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "regnet_handles_live",
			Help: "Handles currently live by kind",
		}, []string{"kind"})),
	}
}

// register registers c on reg, returning the collector registered before
// under the same description if there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if old, ok := are.ExistingCollector.(C); ok {
				return old
			}
		}
		panic(err)
	}
	return c
}

// Registry owns the objects referred to by handles.  A Registry is safe for
// concurrent use.  Operations on a model handle are serialized.
type Registry struct {
	mu     sync.Mutex
	next   Handle
	objs   map[Handle]*entry
	live   [nKinds]int
	loader Loader
	reg    prometheus.Registerer
	met    *metrics
	cfg    *config.Config
	log    *slog.Logger
	logSet bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoader sets the Loader used by LoadModel.
func WithLoader(l Loader) Option {
	return func(r *Registry) { r.loader = l }
}

// WithRegisterer registers the handle metrics on reg.  Without it the
// metrics are kept but not registered.  Registries sharing reg share their
// metrics.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Registry) { r.reg = reg }
}

// WithLogger sets the logger of the Registry and of the models it creates.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
			r.logSet = true
		}
	}
}

// WithConfig makes cfg the source of the default limits of Primes,
// Fixpoints and TrapSpaces.  Unless WithLogger is given, the Registry logs
// to stderr as cfg.Log describes.
func WithConfig(cfg *config.Config) Option {
	return func(r *Registry) { r.cfg = cfg }
}

// New creates a Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		next: 1,
		objs: make(map[Handle]*entry),
		log:  slog.Default()}
	for _, o := range opts {
		o(r)
	}
	if r.cfg != nil && !r.logSet {
		r.log = r.cfg.Logger(os.Stderr)
	}
	r.met = newMetrics(r.reg)
	return r
}

// Live returns the number of live handles of each kind.
func (r *Registry) Live() map[Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make(map[Kind]int, nKinds)
	for k := Kind(0); k < nKinds; k++ {
		res[k] = r.live[k]
	}
	return res
}

func (r *Registry) put(e *entry) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.next
	r.next++
	r.objs[h] = e
	r.live[e.kind]++
	k := e.kind.String()
	r.met.created.WithLabelValues(k).Inc()
	r.met.live.WithLabelValues(k).Inc()
	return h
}

// lookup must be called with r.mu held.
func (r *Registry) lookup(h Handle) (*entry, error) {
	if e, ok := r.objs[h]; ok {
		return e, nil
	}
	if h == 0 || h >= r.next {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return nil, fmt.Errorf("%w: %d", ErrReleased, h)
}

func (r *Registry) get(h Handle, k Kind) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	if e.kind != k {
		return nil, fmt.Errorf("%w: %d is a %s, not a %s", ErrKind, h, e.kind, k)
	}
	return e, nil
}

func (r *Registry) release(h Handle, ok func(Kind) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(h)
	if err != nil {
		return err
	}
	if !ok(e.kind) {
		return fmt.Errorf("%w: can not release %s handle %d here", ErrKind, e.kind, h)
	}
	delete(r.objs, h)
	r.live[e.kind]--
	k := e.kind.String()
	r.met.released.WithLabelValues(k).Inc()
	r.met.live.WithLabelValues(k).Dec()
	return nil
}

// Release releases an expression or model handle.
func (r *Registry) Release(h Handle) error {
	return r.release(h, func(k Kind) bool { return k != KindString })
}

// ReleaseString releases a string buffer handle.
func (r *Registry) ReleaseString(h Handle) error {
	return r.release(h, func(k Kind) bool { return k == KindString })
}

// String returns a copy of the content of string buffer h.
func (r *Registry) String(h Handle) (string, error) {
	e, err := r.get(h, KindString)
	if err != nil {
		return "", err
	}
	return e.s, nil
}

func (r *Registry) expr(h Handle) (*expr.Expr, error) {
	e, err := r.get(h, KindExpr)
	if err != nil {
		return nil, err
	}
	return e.e, nil
}

func (r *Registry) putExpr(e *expr.Expr) Handle {
	return r.put(&entry{kind: KindExpr, e: e})
}

// Bool creates a constant expression.
func (r *Registry) Bool(b bool) Handle {
	return r.putExpr(expr.Const(b))
}

// Var creates a variable expression.
func (r *Registry) Var(id expr.ID) Handle {
	return r.putExpr(expr.Var(id))
}

// Not creates the negation of a.
func (r *Registry) Not(a Handle) (Handle, error) {
	e, err := r.expr(a)
	if err != nil {
		return 0, err
	}
	return r.putExpr(expr.Not(e)), nil
}

func (r *Registry) binary(a, b Handle, op func(x, y *expr.Expr) *expr.Expr) (Handle, error) {
	x, err := r.expr(a)
	if err != nil {
		return 0, err
	}
	y, err := r.expr(b)
	if err != nil {
		return 0, err
	}
	return r.putExpr(op(x, y)), nil
}

// And creates the conjunction of a and b.
func (r *Registry) And(a, b Handle) (Handle, error) {
	return r.binary(a, b, expr.And)
}

// Or creates the disjunction of a and b.
func (r *Registry) Or(a, b Handle) (Handle, error) {
	return r.binary(a, b, expr.Or)
}

func (r *Registry) transform(h Handle, f func(*expr.Expr) (*expr.Expr, bool)) (Handle, bool, error) {
	e, err := r.expr(h)
	if err != nil {
		return 0, false, err
	}
	res, changed := f(e)
	if !changed {
		return 0, false, nil
	}
	return r.putExpr(res), true, nil
}

// Simplify simplifies expression h.  If it returns false, h is already
// simplified and no handle was created.
func (r *Registry) Simplify(h Handle) (Handle, bool, error) {
	return r.transform(h, expr.Simplify)
}

// NNF puts expression h in negation normal form, see Simplify for the
// results.
func (r *Registry) NNF(h Handle) (Handle, bool, error) {
	return r.transform(h, expr.NNF)
}

// Dissolve substitutes expression with for variable v in expression h.  See
// expr.Dissolve and Simplify.
func (r *Registry) Dissolve(h Handle, v expr.ID, with Handle, keepSelfLink bool) (Handle, bool, error) {
	w, err := r.expr(with)
	if err != nil {
		return 0, false, err
	}
	return r.transform(h, func(e *expr.Expr) (*expr.Expr, bool) {
		return expr.Dissolve(e, v, w, keepSelfLink)
	})
}

// ExprString renders expression h into a string buffer.
func (r *Registry) ExprString(h Handle) (Handle, error) {
	e, err := r.expr(h)
	if err != nil {
		return 0, err
	}
	return r.put(&entry{kind: KindString, s: e.String()}), nil
}

// NewModel creates an empty model.
func (r *Registry) NewModel() Handle {
	return r.putModel(model.New(model.WithLogger(r.log)))
}

func (r *Registry) putModel(m *model.Model) Handle {
	return r.put(&entry{kind: KindModel, m: &modelEntry{m: m}})
}

// LoadModel loads a model with the Loader of r.  On failure no handle is
// created.
func (r *Registry) LoadModel(name string) (Handle, error) {
	if r.loader == nil {
		return 0, ErrNoLoader
	}
	m, err := r.loader.Load(name)
	if err != nil {
		r.log.Warn("model load failed",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("%w %q: %w", ErrLoad, name, err)
	}
	if m == nil {
		return 0, fmt.Errorf("%w %q: loader returned no model", ErrLoad, name)
	}
	if err := m.Check(); err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrLoad, name, err)
	}
	return r.putModel(m), nil
}

// withModel runs f with exclusive access to model h.
func (r *Registry) withModel(h Handle, f func(m *model.Model) error) error {
	e, err := r.get(h, KindModel)
	if err != nil {
		return err
	}
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	return f(e.m.m)
}

// AddComponent adds a component to model h.  See model.Model.Add.
func (r *Registry) AddComponent(h Handle, name string) (expr.ID, error) {
	var id expr.ID
	err := r.withModel(h, func(m *model.Model) error {
		var err error
		id, err = m.Add(name)
		return err
	})
	return id, err
}

// SetRule sets the rule of component name of model h to expression e.
func (r *Registry) SetRule(h Handle, name string, e Handle) error {
	rule, err := r.expr(e)
	if err != nil {
		return err
	}
	return r.withModel(h, func(m *model.Model) error {
		return m.SetRule(name, rule)
	})
}

// ModelExpr returns a new expression handle for the rule of component name
// of model h.
func (r *Registry) ModelExpr(h Handle, name string) (Handle, error) {
	var rule *expr.Expr
	err := r.withModel(h, func(m *model.Model) error {
		var err error
		rule, err = m.Expr(name)
		return err
	})
	if err != nil {
		return 0, err
	}
	return r.putExpr(rule), nil
}

// ModelString renders model h into a string buffer.
func (r *Registry) ModelString(h Handle) (Handle, error) {
	var s string
	err := r.withModel(h, func(m *model.Model) error {
		s = m.String()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return r.put(&entry{kind: KindString, s: s}), nil
}

// Rename renames a component of model h.
func (r *Registry) Rename(h Handle, source, target string) error {
	return r.withModel(h, func(m *model.Model) error {
		return m.Rename(source, target)
	})
}

// Eliminate eliminates a component of model h.
func (r *Registry) Eliminate(h Handle, name string, keepSelfLink bool) error {
	return r.withModel(h, func(m *model.Model) error {
		return m.Eliminate(name, keepSelfLink)
	})
}

// Primes computes the prime implicants of the rules of model h.  A
// maxSupport or workers <= 0 takes its value from the configuration.
func (r *Registry) Primes(ctx context.Context, h Handle, maxSupport, workers int) ([]model.Primes, error) {
	if r.cfg != nil {
		if maxSupport <= 0 {
			maxSupport = r.cfg.Primes.MaxSupport
		}
		if workers <= 0 {
			workers = r.cfg.Primes.Workers
		}
	}
	var res []model.Primes
	err := r.withModel(h, func(m *model.Model) error {
		var err error
		res, err = m.Primes(ctx, maxSupport, workers)
		return err
	})
	return res, err
}

// Fixpoints computes the stable states of model h.  Zero fields of opts,
// and the Auto backend, take their value from the configuration.
func (r *Registry) Fixpoints(ctx context.Context, h Handle, opts fix.Options) ([]fix.State, error) {
	if r.cfg != nil {
		d := r.cfg.FixOptions()
		if opts.Backend == fix.Auto {
			opts.Backend = d.Backend
		}
		if opts.Max == 0 {
			opts.Max = d.Max
		}
		if opts.MaxSupport == 0 {
			opts.MaxSupport = d.MaxSupport
		}
		if opts.Workers == 0 {
			opts.Workers = d.Workers
		}
	}
	var res []fix.State
	err := r.withModel(h, func(m *model.Model) error {
		var err error
		res, err = m.Fixpoints(ctx, opts)
		return err
	})
	return res, err
}

// TrapSpaces computes the trap spaces of model h.  Zero limits in opts take
// their value from the configuration.
func (r *Registry) TrapSpaces(ctx context.Context, h Handle, opts fix.TrapOptions) ([]fix.Space, error) {
	if r.cfg != nil {
		d := r.cfg.TrapOptions()
		if opts.MaxSupport == 0 {
			opts.MaxSupport = d.MaxSupport
		}
		if opts.Workers == 0 {
			opts.Workers = d.Workers
		}
	}
	var res []fix.Space
	err := r.withModel(h, func(m *model.Model) error {
		var err error
		res, err = m.TrapSpaces(ctx, opts)
		return err
	})
	return res, err
}
