package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/loomviz/loom/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output         string   // output file (single format) or base path
	formats        []string // output formats: json, svg, dot, png, pdf
	algorithm      string   // layout algorithm: layered (default), grid
	direction      string   // flow direction: TB (default), BT, LR, RL
	nodeSpacing    float64  // gap between nodes in a layer
	layerSpacing   float64  // gap between layers
	clusterPadding float64  // padding inside cluster boxes
	curve          string   // edge curve style: linear (default), basis
	refresh        bool     // bypass cache reads
	noCache        bool     // disable caching entirely
}

// newRenderCmd creates the render command for producing diagram artifacts.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [doc.json]",
		Short: "Render a diagram document to one or more formats",
		Long: `Render a diagram document to one or more output formats.

The input is a diagram document in JSON form. The document is laid out
with the selected algorithm and emitted as SVG, DOT, PNG, PDF, or
laid-out JSON. Layouts and artifacts are cached locally for faster
subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "layout algorithm: layered (default), grid")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "flow direction: TB (default), BT, LR, RL")
	cmd.Flags().Float64Var(&opts.nodeSpacing, "node-spacing", 0, "gap between nodes in a layer")
	cmd.Flags().Float64Var(&opts.layerSpacing, "layer-spacing", 0, "gap between layers")
	cmd.Flags().Float64Var(&opts.clusterPadding, "cluster-padding", 0, "padding inside cluster boxes")
	cmd.Flags().StringVar(&opts.curve, "curve", "", "edge curve style: linear (default), basis")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender executes the render pipeline and writes artifacts to disk.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyLayoutConfig(cfg.Layout, opts)

	result, err := executeRender(ctx, logger, input, opts)
	if err != nil {
		printError("Render failed: %v", err)
		return err
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := artifactPath(base, opts.output, format, len(opts.formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	printSuccess("Rendered %s", filepath.Base(input))
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	return nil
}

// executeRender loads the document and runs the pipeline with the flag
// options applied.
func executeRender(ctx context.Context, logger *log.Logger, input string, opts *renderOpts) (*render.Result, error) {
	source, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", input, err)
	}

	dir, err := parseDirection(opts.direction)
	if err != nil {
		return nil, err
	}

	runner, err := newRunner(logger, opts.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p := newProgress(logger)
	result, err := runner.Execute(ctx, render.Options{
		Source:         source,
		Algorithm:      opts.algorithm,
		Direction:      dir,
		NodeSpacing:    opts.nodeSpacing,
		LayerSpacing:   opts.layerSpacing,
		ClusterPadding: opts.clusterPadding,
		Curve:          opts.curve,
		Formats:        opts.formats,
		Refresh:        opts.refresh,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	p.done("render complete")
	return result, nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, the input path without extension is used. If output
// carries a known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if len(ext) > 1 && validFormats[ext[1:]] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPath picks the output file name for one format. A single
// explicit output path is used verbatim; otherwise the format becomes the
// extension.
func artifactPath(base, output, format string, total int) string {
	if output != "" && total == 1 {
		return output
	}
	return base + "." + format
}
