package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newPreviewCmd creates the preview command, an interactive terminal
// browser over the computed layout.
func newPreviewCmd() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "preview [doc.json]",
		Short: "Browse a computed layout in the terminal",
		Long: `Browse a computed layout in the terminal.

The document is laid out with the selected algorithm, then presented as
a layer-by-layer browser: arrow keys move between layers, enter expands
a layer to show node geometry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = []string{render.FormatJSON}
			return runPreview(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "layout algorithm: layered (default), grid")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "flow direction: TB (default), BT, LR, RL")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runPreview computes the layout and starts the interactive browser.
func runPreview(ctx context.Context, input string, opts *renderOpts) error {
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

	model := newLayerBrowserModel(result.Graph)
	if len(model.Layers) == 0 {
		printInfo("Document has no nodes")
		return nil
	}

	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// LayerBrowserModel - Interactive layout inspection
// =============================================================================

// layerEntry groups the nodes assigned to one layer.
type layerEntry struct {
	Layer int
	Nodes []*graph.Node
}

// LayerBrowserModel is the bubbletea model for browsing a laid-out graph
// layer by layer.
type LayerBrowserModel struct {
	Layers   []layerEntry
	Cursor   int
	Expanded bool
	Height   int
	Offset   int
}

// newLayerBrowserModel buckets the graph's non-cluster nodes by layer,
// ordered by position within each layer.
func newLayerBrowserModel(g *graph.Graph) LayerBrowserModel {
	byLayer := map[int][]*graph.Node{}
	for _, n := range g.Nodes() {
		if n.IsCluster {
			continue
		}
		byLayer[n.Layer] = append(byLayer[n.Layer], n)
	}

	layers := make([]layerEntry, 0, len(byLayer))
	for l, nodes := range byLayer {
		sort.Slice(nodes, func(i, j int) bool {
			if nodes[i].X != nodes[j].X {
				return nodes[i].X < nodes[j].X
			}
			return nodes[i].Y < nodes[j].Y
		})
		layers = append(layers, layerEntry{Layer: l, Nodes: nodes})
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i].Layer < layers[j].Layer })

	return LayerBrowserModel{Layers: layers, Height: 15}
}

func (m LayerBrowserModel) Init() tea.Cmd {
	return nil
}

func (m LayerBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Expanded = false
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Layers)-1 {
				m.Cursor++
				m.Expanded = false
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LayerBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layout Preview"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Layers) {
		end = len(m.Layers)
	}

	for i := m.Offset; i < end; i++ {
		entry := m.Layers[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := fmt.Sprintf("layer %d · %d nodes", entry.Layer, len(entry.Nodes))
		b.WriteString(cursor + style.Render(line))
		b.WriteString("\n")

		if i == m.Cursor && m.Expanded {
			for _, n := range entry.Nodes {
				detail := fmt.Sprintf("    %s  (%.0f, %.0f)  %.0f×%.0f",
					nodeTitle(n), n.X, n.Y, n.Width, n.Height)
				b.WriteString(listDimStyle.Render(detail))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func nodeTitle(n *graph.Node) string {
	if n.Label != "" && n.Label != n.ID {
		return fmt.Sprintf("%s (%s)", n.Label, n.ID)
	}
	return n.ID
}
