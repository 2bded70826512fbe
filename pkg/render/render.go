// Package render orchestrates one diagram render: normalize the input
// document into a graph, resolve a layout engine from the registry, run
// the layout, and emit drawable primitives for the configured format
// sinks. Stage results are cached by content hash so repeated renders of
// the same document skip straight to the artifacts.
//
// Each call owns its graph and tree for the duration of the run; the
// only shared state is the engine registry and the cache backend, both
// of which are safe for concurrent use.
package render

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/loomviz/loom/pkg/cache"
	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/layout"
	"github.com/loomviz/loom/pkg/observability"
	"github.com/loomviz/loom/pkg/text"
)

// Format constants for output artifacts. FormatJSON is built in; other
// formats are served by registered sinks.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Sink turns emitted primitives into one serialized artifact format.
type Sink interface {
	Format() string
	Emit(prims []Primitive, g *graph.Graph) ([]byte, error)
}

// Options configures one render call. The struct supports JSON
// serialization for API requests.
type Options struct {
	// Source is the diagram document as JSON. Exactly one of Source and
	// Graph must be set.
	Source []byte `json:"source,omitempty"`

	// Graph is a pre-built model, used when the caller already
	// translated its diagram data.
	Graph *graph.Graph `json:"-"`

	// Algorithm names the layout engine; empty selects the registry
	// fallback.
	Algorithm string `json:"algorithm,omitempty"`

	// Layout options forwarded to the engine.
	Direction      graph.Direction `json:"direction,omitempty"`
	NodeSpacing    float64         `json:"node_spacing,omitempty"`
	LayerSpacing   float64         `json:"layer_spacing,omitempty"`
	ClusterPadding float64         `json:"cluster_padding,omitempty"`
	Curve          string          `json:"curve,omitempty"`

	// Formats selects the artifacts to produce. Defaults to json.
	Formats []string `json:"formats,omitempty"`

	Font text.Font `json:"font,omitempty"`

	// Refresh bypasses cache reads (results are still written back).
	Refresh bool `json:"refresh,omitempty"`

	Logger   *log.Logger   `json:"-"`
	Measurer text.Measurer `json:"-"`

	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == nil && o.Graph == nil {
		return errors.New(errors.ErrCodeInvalidOptions, "source or graph is required")
	}
	if o.Source != nil && o.Graph != nil {
		return errors.New(errors.ErrCodeInvalidOptions, "source and graph are mutually exclusive")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Font == (text.Font{}) {
		o.Font = text.Font{Size: text.DefaultSize}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) layoutOptions() layout.Options {
	return layout.Options{
		Direction:      o.Direction,
		NodeSpacing:    o.NodeSpacing,
		LayerSpacing:   o.LayerSpacing,
		ClusterPadding: o.ClusterPadding,
		Curve:          o.Curve,
		Measurer:       o.Measurer,
		Font:           o.Font,
		Logger:         o.Logger,
	}
}

func (o *Options) layoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Algorithm:      o.Algorithm,
		Direction:      string(o.Direction),
		NodeSpacing:    o.NodeSpacing,
		LayerSpacing:   o.LayerSpacing,
		ClusterPadding: o.ClusterPadding,
		Curve:          o.Curve,
	}
}

// Result contains the outputs of one render call.
type Result struct {
	// Graph is the laid-out model.
	Graph *graph.Graph

	// GraphHash is the content hash of the normalized input.
	GraphHash string

	// Primitives is the emitted drawing list.
	Primitives []Primitive

	// Artifacts contains serialized outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains render call statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	ReversedEdges int
	NormalizeTime time.Duration
	LayoutTime    time.Duration
	EmitTime      time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	GraphHit    bool // normalized graph came from cache
	LayoutHit   bool
	ArtifactHit bool // all requested artifacts came from cache
}

// Runner executes render calls with caching. It is stateless apart from
// its collaborators; one Runner serves concurrent calls.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Registry *layout.Registry
	Logger   *log.Logger

	sinks map[string]Sink
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// selects the default key scheme.
func NewRunner(reg *layout.Registry, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Registry: reg,
		Logger:   logger,
		sinks:    make(map[string]Sink),
	}
}

// RegisterSink makes a format sink available to Execute. Registering the
// same format twice overwrites the earlier sink.
func (r *Runner) RegisterSink(s Sink) { r.sinks[s.Format()] = s }

// Close releases the cache backend.
func (r *Runner) Close() error { return r.Cache.Close() }

// WithKeyer returns a copy of the runner whose cache keys come from k.
// The copy shares the cache, registry, logger, and sinks, so callers can
// scope cache entries per tenant or per diagram without rebuilding the
// pipeline.
func (r *Runner) WithKeyer(k cache.Keyer) *Runner {
	c := *r
	c.Keyer = k
	return &c
}

// Execute runs the normalize → resolve → layout → emit pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	for _, f := range opts.Formats {
		if f != FormatJSON && r.sinks[f] == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "no sink registered for format %q", f)
		}
	}

	hooks := observability.Render()
	renderStart := time.Now()
	algorithm := opts.Algorithm
	result := &Result{Artifacts: make(map[string][]byte)}
	finish := func(err error) {
		hooks.OnRenderComplete(ctx, algorithm, len(result.Primitives), time.Since(renderStart), err)
	}

	stage := func(s Stage, fn func() error) error {
		hooks.OnStageStart(ctx, s.String())
		start := time.Now()
		err := fn()
		hooks.OnStageComplete(ctx, s.String(), time.Since(start), err)
		return err
	}

	var g *graph.Graph
	var tree *graph.Tree
	err := stage(StageNormalizing, func() error {
		start := time.Now()
		var err error
		g, tree, result.CacheInfo.GraphHit, err = r.normalize(ctx, opts)
		result.Stats.NormalizeTime = time.Since(start)
		return err
	})
	if err != nil {
		finish(err)
		return nil, wrapStage(err, "normalize")
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	hooks.OnRenderStart(ctx, algorithm, g.NodeCount(), g.EdgeCount())
	if data, err := graph.Marshal(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}
	opts.Logger.Info("normalized graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount())

	var engine layout.Engine
	err = stage(StageResolvingAlgorithm, func() error {
		var err error
		engine, err = r.Registry.Resolve(ctx, opts.Algorithm)
		return err
	})
	if err != nil {
		finish(err)
		return nil, err
	}
	algorithm = engine.Name()

	err = stage(StageLayingOut, func() error {
		start := time.Now()
		hit, err := r.layoutWithCache(ctx, g, tree, engine, opts, result.GraphHash)
		result.Stats.LayoutTime = time.Since(start)
		result.CacheInfo.LayoutHit = hit
		return err
	})
	if err != nil {
		finish(err)
		return nil, wrapStage(err, "layout")
	}
	for _, e := range g.Edges() {
		if e.Reversed {
			result.Stats.ReversedEdges++
		}
	}
	opts.Logger.Info("computed layout",
		"algorithm", engine.Name(),
		"cached", result.CacheInfo.LayoutHit,
		"duration", result.Stats.LayoutTime)

	err = stage(StageEmittingPrimitives, func() error {
		start := time.Now()
		hit, err := r.emitWithCache(ctx, g, tree, opts, result)
		result.Stats.EmitTime = time.Since(start)
		result.CacheInfo.ArtifactHit = hit
		return err
	})
	if err != nil {
		finish(err)
		return nil, wrapStage(err, "emit")
	}
	opts.Logger.Info("emitted artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.EmitTime)

	result.Graph = g
	finish(nil)
	return result, nil
}

// normalize translates the source document into a validated graph and
// its cluster tree. Normalized source documents are cached under their
// content hash, so a warm run skips parsing and validation; pre-built
// graphs bypass the cache since they have no canonical source bytes.
func (r *Runner) normalize(ctx context.Context, opts Options) (*graph.Graph, *graph.Tree, bool, error) {
	if opts.Graph != nil {
		g := opts.Graph
		if err := g.Validate(); err != nil {
			return nil, nil, false, err
		}
		return g, graph.NewTree(g), false, nil
	}

	key := r.Keyer.GraphKey(cache.Hash(opts.Source), cache.GraphKeyOpts{
		Direction: string(opts.Direction),
	})
	cacheHooks := observability.Cache()
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := graph.Unmarshal(data); err == nil {
				cacheHooks.OnCacheHit(ctx, "graph")
				return g, graph.NewTree(g), true, nil
			}
		}
		cacheHooks.OnCacheMiss(ctx, "graph")
	}

	g, err := graph.Unmarshal(opts.Source)
	if err != nil {
		return nil, nil, false, err
	}
	if err := g.Validate(); err != nil {
		return nil, nil, false, err
	}
	if data, err := graph.Marshal(g); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLGraph)
		cacheHooks.OnCacheSet(ctx, "graph", len(data))
	}
	return g, graph.NewTree(g), false, nil
}

// layoutWithCache runs the engine, restoring node and edge geometry from
// cache when an identical layout was computed before.
func (r *Runner) layoutWithCache(ctx context.Context, g *graph.Graph, tree *graph.Tree, engine layout.Engine, opts Options, graphHash string) (bool, error) {
	keyOpts := opts.layoutKeyOpts()
	keyOpts.Algorithm = engine.Name()
	key := r.Keyer.LayoutKey(graphHash, keyOpts)

	cacheHooks := observability.Cache()
	if !opts.Refresh && graphHash != "" {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := graph.Unmarshal(data); err == nil && restoreGeometry(g, cached) {
				cacheHooks.OnCacheHit(ctx, "layout")
				return true, nil
			}
		}
		cacheHooks.OnCacheMiss(ctx, "layout")
	}

	if err := engine.Layout(g, tree, opts.layoutOptions()); err != nil {
		return false, err
	}

	if graphHash != "" {
		if data, err := graph.Marshal(g); err == nil {
			_ = r.Cache.Set(ctx, key, data, cache.TTLLayout)
			cacheHooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return false, nil
}

// restoreGeometry copies positions and paths from a cached layout into
// the working graph. Returns false when the cached shape doesn't match.
func restoreGeometry(dst, src *graph.Graph) bool {
	if dst.NodeCount() != src.NodeCount() || dst.EdgeCount() != src.EdgeCount() {
		return false
	}
	for _, n := range src.Nodes() {
		target, ok := dst.Node(n.ID)
		if !ok {
			return false
		}
		target.Layer = n.Layer
		target.X, target.Y = n.X, n.Y
		target.Width, target.Height = n.Width, n.Height
	}
	srcEdges := src.Edges()
	for i, e := range dst.Edges() {
		cached := srcEdges[i]
		if cached.ID != e.ID {
			return false
		}
		e.From, e.To = cached.From, cached.To
		e.ArrowStart, e.ArrowEnd = cached.ArrowStart, cached.ArrowEnd
		e.Reversed = cached.Reversed
		e.Points = append(e.Points[:0], cached.Points...)
	}
	return true
}

// emitWithCache produces primitives and artifacts, reusing cached
// artifacts when every requested format is present.
func (r *Runner) emitWithCache(ctx context.Context, g *graph.Graph, tree *graph.Tree, opts Options, result *Result) (bool, error) {
	result.Primitives = EmitPrimitives(g, tree, opts.Font)

	layoutData, err := graph.Marshal(g)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, err, "hash layout")
	}
	layoutHash := cache.Hash(layoutData)

	cacheHooks := observability.Cache()
	allCached := !opts.Refresh
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: format})
		if allCached {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, "artifact")
				result.Artifacts[format] = data
				continue
			}
			cacheHooks.OnCacheMiss(ctx, "artifact")
			allCached = false
		}

		data, err := r.emitFormat(format, result.Primitives, g)
		if err != nil {
			return false, err
		}
		result.Artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return allCached && len(opts.Formats) > 0, nil
}

func (r *Runner) emitFormat(format string, prims []Primitive, g *graph.Graph) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(prims, "", "  ")
	}
	sink, ok := r.sinks[format]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no sink registered for format %q", format)
	}
	return sink.Emit(prims, g)
}

// wrapStage annotates a stage failure while preserving its error code.
func wrapStage(err error, stage string) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, "%s", stage)
}
