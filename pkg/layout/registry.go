package layout

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/observability"
)

// Loader produces an engine instance. Loaders may be expensive (dynamic
// fetch, WASM instantiation, large table construction); the registry
// invokes each distinct name's loader at most once and caches the result
// until the name is re-registered.
type Loader func(ctx context.Context) (Engine, error)

// Definition binds an algorithm name to its loader.
type Definition struct {
	Name string
	// Variant optionally distinguishes implementations of the same
	// family (e.g. "network-simplex" vs "longest-path"). Informational.
	Variant string
	Loader  Loader
}

// entry wraps a definition with its once-per-name load state.
type entry struct {
	def    Definition
	once   sync.Once
	engine Engine
	err    error
}

// Registry maps algorithm names to engine loaders.
//
// The table is long-lived and read-mostly after startup registration, but
// runtime re-registration is supported; all access is guarded by a
// read-write lock. Resolution is the single suspension point of a render
// call: loaders receive the caller's context and cancellation is honored
// before a load begins.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	fallback string
	logger   *log.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithFallback sets the algorithm substituted when an unregistered name is
// requested. Resolution of the fallback emits a warning signal rather than
// failing.
func WithFallback(name string) RegistryOption {
	return func(r *Registry) { r.fallback = name }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds one or more algorithm definitions to the registry.
// Re-registering an existing name overwrites it (last registration wins)
// and discards any cached engine for that name, so the new loader is used
// on the next Resolve. Definitions with an empty name or nil loader are
// ignored.
func (r *Registry) Register(defs ...Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range defs {
		if def.Name == "" || def.Loader == nil {
			continue
		}
		r.entries[def.Name] = &entry{def: def}
	}
}

// Names returns the registered algorithm names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Fallback returns the configured fallback algorithm name, if any.
func (r *Registry) Fallback() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Resolve returns the engine for the requested algorithm name.
//
// An empty name resolves to the fallback without a warning. An unknown
// name resolves to the fallback with exactly one warning-level signal
// (log line plus registry hook); if no fallback is configured or the
// fallback itself is unknown or fails to load, Resolve returns an
// ALGORITHM_UNAVAILABLE error. A registered name whose loader fails is
// also surfaced as ALGORITHM_UNAVAILABLE, never silently substituted.
func (r *Registry) Resolve(ctx context.Context, name string) (Engine, error) {
	observability.Registry().OnResolve(ctx, name)

	if name == "" {
		r.mu.RLock()
		name = r.fallback
		r.mu.RUnlock()
		if name == "" {
			return nil, errors.New(errors.ErrCodeAlgorithmUnavailable, "no algorithm requested and no fallback configured")
		}
	}

	r.mu.RLock()
	e, ok := r.entries[name]
	fallback := r.fallback
	r.mu.RUnlock()

	if ok {
		engine, err := r.load(ctx, e)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAlgorithmUnavailable, err, "load algorithm %q", name)
		}
		return engine, nil
	}

	if fallback == "" || fallback == name {
		return nil, errors.New(errors.ErrCodeAlgorithmUnavailable, "algorithm %q is not registered", name)
	}

	r.mu.RLock()
	fe, ok := r.entries[fallback]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeAlgorithmUnavailable, "algorithm %q is not registered and fallback %q is missing", name, fallback)
	}

	engine, err := r.load(ctx, fe)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAlgorithmUnavailable, err, "algorithm %q is not registered and fallback %q failed", name, fallback)
	}

	r.logger.Warn("layout algorithm not registered, using fallback", "requested", name, "fallback", fallback)
	observability.Registry().OnFallback(ctx, name, fallback)
	return engine, nil
}

// load invokes the entry's loader once and caches the outcome.
func (r *Registry) load(ctx context.Context, e *entry) (Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.once.Do(func() {
		start := time.Now()
		e.engine, e.err = e.def.Loader(ctx)
		observability.Registry().OnLoad(ctx, e.def.Name, time.Since(start), e.err)
	})
	return e.engine, e.err
}

// Static wraps an already-constructed engine in a Loader, for algorithms
// registered eagerly at startup.
func Static(e Engine) Loader {
	return func(context.Context) (Engine, error) { return e, nil }
}
