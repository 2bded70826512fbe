package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/loomviz/loom/pkg/cache"
	"github.com/loomviz/loom/pkg/layout"
	"github.com/loomviz/loom/pkg/layout/grid"
	"github.com/loomviz/loom/pkg/layout/layered"
	"github.com/loomviz/loom/pkg/render"
	"github.com/loomviz/loom/pkg/render/dot"
	"github.com/loomviz/loom/pkg/render/svg"
)

// appName is the application name used for directories and display.
const appName = "loom"

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a render runner with all built-in engines and sinks
// registered.
func newRunner(logger *log.Logger, noCache bool) (*render.Runner, error) {
	c, err := newCache(noCache)
	if err != nil {
		return nil, err
	}

	runner := render.NewRunner(newEngineRegistry(logger), c, nil, logger)
	registerSinks(runner)
	return runner, nil
}

// newEngineRegistry builds the layout registry with the layered engine as
// fallback.
func newEngineRegistry(logger *log.Logger) *layout.Registry {
	reg := layout.NewRegistry(
		layout.WithFallback(layout.AlgoLayered),
		layout.WithLogger(logger),
	)
	reg.Register(
		layout.Definition{Name: layout.AlgoLayered, Loader: layout.Static(layered.New())},
		layout.Definition{Name: layout.AlgoGrid, Loader: layout.Static(grid.New())},
	)
	return reg
}

// registerSinks attaches every built-in artifact sink to the runner. JSON
// is handled by the runner itself.
func registerSinks(r *render.Runner) {
	r.RegisterSink(svg.New())
	r.RegisterSink(svg.NewPDFSink())
	r.RegisterSink(dot.NewSink(render.FormatDOT))
	r.RegisterSink(dot.NewSink(render.FormatPNG))
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/loom/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	render.FormatJSON: true,
	render.FormatSVG:  true,
	render.FormatDOT:  true,
	render.FormatPNG:  true,
	render.FormatPDF:  true,
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'json', 'svg', 'dot', 'png', or 'pdf')", f)
		}
	}
	return nil
}
