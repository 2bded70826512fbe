package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	os.Unsetenv("XDG_CACHE_HOME")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".cache", appName)
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir() = %q, should honor XDG_CACHE_HOME", dir)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{name: "no output strips input extension", output: "", input: "diagram.json", want: "diagram"},
		{name: "output with format extension", output: "out.svg", input: "diagram.json", want: "out"},
		{name: "output without extension", output: "out", input: "diagram.json", want: "out"},
		{name: "output with unknown extension", output: "out.bak", input: "diagram.json", want: "out.bak"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	if got := artifactPath("diagram", "", "svg", 2); got != "diagram.svg" {
		t.Errorf("artifactPath() = %q, want %q", got, "diagram.svg")
	}
	if got := artifactPath("out", "out.svg", "svg", 1); got != "out.svg" {
		t.Errorf("artifactPath() with explicit output = %q, want %q", got, "out.svg")
	}
}

func TestConfigPathsIncludeWorkingDir(t *testing.T) {
	paths := configPaths()
	if len(paths) == 0 || paths[0] != configFileName {
		t.Fatalf("configPaths()[0] = %v, want %q first", paths, configFileName)
	}
	for _, p := range paths[1:] {
		if !strings.HasSuffix(p, filepath.Join(appName, configFileName)) {
			t.Errorf("config path %q should end with %s", p, filepath.Join(appName, configFileName))
		}
	}
}
