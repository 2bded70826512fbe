package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loomviz/loom/pkg/render"
)

// newLayoutCmd creates the layout command, which computes geometry
// without emitting drawing artifacts.
func newLayoutCmd() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "layout [doc.json]",
		Short: "Compute layout geometry for a diagram document",
		Long: `Compute layout geometry for a diagram document.

The output is the same document with node positions, sizes, and edge
routes filled in. It can be rendered later with 'loom render' or fed to
another tool. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = []string{render.FormatJSON}
			return runLayout(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")
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

// runLayout computes the layout and writes the laid-out document.
func runLayout(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyLayoutConfig(cfg.Layout, opts)

	result, err := executeRender(ctx, logger, input, opts)
	if err != nil {
		printError("Layout failed: %v", err)
		return err
	}

	outputPath := opts.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	if err := os.WriteFile(outputPath, result.Artifacts[render.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	printSuccess("Layout written")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	return nil
}
