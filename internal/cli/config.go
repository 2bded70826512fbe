package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/loomviz/loom/pkg/graph"
)

// configFileName is looked up in the working directory and in the XDG
// config directory (~/.config/loom/).
const configFileName = "loom.toml"

// Config holds file-based defaults for CLI commands. Flags always win
// over config values.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds default layout parameters.
type LayoutConfig struct {
	Algorithm      string  `toml:"algorithm"`
	Direction      string  `toml:"direction"`
	NodeSpacing    float64 `toml:"node_spacing"`
	LayerSpacing   float64 `toml:"layer_spacing"`
	ClusterPadding float64 `toml:"cluster_padding"`
	Curve          string  `toml:"curve"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	RedisURL string `toml:"redis_url"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// loadConfig reads loom.toml from the working directory, then from the
// XDG config directory. A missing file yields a zero Config.
func loadConfig() (Config, error) {
	var cfg Config
	for _, path := range configPaths() {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

func configPaths() []string {
	paths := []string{configFileName}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		paths = append(paths, filepath.Join(configHome, appName, configFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, configFileName))
	}
	return paths
}

// applyLayoutConfig copies config defaults into unset flag values.
func applyLayoutConfig(cfg LayoutConfig, opts *renderOpts) {
	if opts.algorithm == "" {
		opts.algorithm = cfg.Algorithm
	}
	if opts.direction == "" && cfg.Direction != "" {
		opts.direction = cfg.Direction
	}
	if opts.nodeSpacing == 0 {
		opts.nodeSpacing = cfg.NodeSpacing
	}
	if opts.layerSpacing == 0 {
		opts.layerSpacing = cfg.LayerSpacing
	}
	if opts.clusterPadding == 0 {
		opts.clusterPadding = cfg.ClusterPadding
	}
	if opts.curve == "" {
		opts.curve = cfg.Curve
	}
}

// parseDirection validates a direction flag value. An empty flag stays
// empty so the document's own direction is used.
func parseDirection(s string) (graph.Direction, error) {
	switch graph.Direction(s) {
	case "", graph.TopDown, graph.BottomUp, graph.LeftRight, graph.RightLeft:
		return graph.Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction: %s (must be 'TB', 'BT', 'LR', or 'RL')", s)
}
