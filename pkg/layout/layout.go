// Package layout defines the layout engine contract and the pluggable
// algorithm registry that decouples "which algorithm computes positions"
// from the render dispatcher.
//
// Engines consume a normalized [graph.Graph] plus its cluster [graph.Tree]
// and fill in node positions, node sizes, and edge paths in place. The
// registry maps algorithm names to loaders so implementations can be
// registered eagerly at startup or loaded lazily on first use.
package layout

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/text"
)

// Well-known algorithm names.
const (
	AlgoLayered = "layered"
	AlgoGrid    = "grid"
)

// DefaultAlgorithm is used when a caller does not request one.
const DefaultAlgorithm = AlgoLayered

// Curve interpolation choices for edge paths.
const (
	CurveLinear = "linear"
	CurveBasis  = "basis"
)

// Spacing defaults, overridable per call.
const (
	DefaultNodeSpacing    = 40.0
	DefaultLayerSpacing   = 60.0
	DefaultClusterPadding = 20.0
	DefaultOrderingPasses = 4
)

// Options carries the configuration a layout engine consults. All values
// are explicit; engines never read ambient global state, which keeps
// concurrent render calls safe by construction.
type Options struct {
	// Direction overrides the graph's own flow direction when non-empty.
	Direction graph.Direction

	// Spacing between adjacent nodes within a layer.
	NodeSpacing float64

	// Spacing between adjacent layers.
	LayerSpacing float64

	// Padding between a cluster's border and its members.
	ClusterPadding float64

	// Curve selects edge interpolation: CurveLinear or CurveBasis.
	Curve string

	// OrderingPasses bounds the crossing-reduction sweeps.
	OrderingPasses int

	// Measurer supplies minimum node dimensions from label text.
	Measurer text.Measurer

	// Font is passed through to the Measurer.
	Font text.Font

	// Logger receives debug output. Defaults to a discard logger.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	switch o.Direction {
	case "", graph.TopDown, graph.BottomUp, graph.LeftRight, graph.RightLeft:
	default:
		return errors.New(errors.ErrCodeInvalidOptions, "unknown direction %q", o.Direction)
	}
	switch o.Curve {
	case "":
		o.Curve = CurveLinear
	case CurveLinear, CurveBasis:
	default:
		return errors.New(errors.ErrCodeInvalidOptions, "unknown curve %q", o.Curve)
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.LayerSpacing <= 0 {
		o.LayerSpacing = DefaultLayerSpacing
	}
	if o.ClusterPadding <= 0 {
		o.ClusterPadding = DefaultClusterPadding
	}
	if o.OrderingPasses <= 0 {
		o.OrderingPasses = DefaultOrderingPasses
	}
	if o.Measurer == nil {
		o.Measurer = text.NewApproximate()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// EffectiveDirection resolves the direction to use for g.
func (o *Options) EffectiveDirection(g *graph.Graph) graph.Direction {
	if o.Direction != "" {
		return o.Direction
	}
	return g.Direction()
}

// clusterLabelMargin separates a cluster label from the member below it.
const clusterLabelMargin = 4

// ClusterTopInset returns the space reserved between a cluster's top
// border and its topmost member. The label band needs at least one line
// of text, so a large font wins over the padding.
func (o *Options) ClusterTopInset() float64 {
	size := o.Font.Size
	if size == 0 {
		size = text.DefaultSize
	}
	return math.Max(o.ClusterPadding, size+clusterLabelMargin)
}

// Engine computes node positions, node sizes, and edge paths for a graph.
//
// Layout mutates g in place and must leave every node with X, Y, Width,
// and Height set and every edge with a routed point list. Engines are
// synchronous and CPU-bound; any expensive setup belongs in the Loader
// that produced the engine. Engines must be safe to reuse across calls,
// each of which owns its graph and tree.
type Engine interface {
	// Name returns the algorithm name the engine implements.
	Name() string

	// Layout runs the algorithm over g using tree for cluster parentage.
	Layout(g *graph.Graph, tree *graph.Tree, opts Options) error
}
