package cli

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gridlay/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"text", []string{"text"}},
		{"text,svg,png", []string{"text", "svg", "png"}},
		{" json , dot ,", []string{"json", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseFormats(tt.input)); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseSizes(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    map[string]pipeline.LeafSize
		wantErr bool
	}{
		{name: "none", input: nil, want: nil},
		{
			name:  "several",
			input: []string{"nav=2x3", "main=1.5X4"},
			want: map[string]pipeline.LeafSize{
				"nav":  {Width: 2, Height: 3},
				"main": {Width: 1.5, Height: 4},
			},
		},
		{name: "missing equals", input: []string{"nav2x3"}, wantErr: true},
		{name: "missing name", input: []string{"=2x3"}, wantErr: true},
		{name: "missing x", input: []string{"nav=23"}, wantErr: true},
		{name: "bad width", input: []string{"nav=ax3"}, wantErr: true},
		{name: "bad height", input: []string{"nav=2xb"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSizes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSizes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseSizes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join("/tmp/xdg-cache", "gridlay"); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		t.Setenv("HOME", "/tmp/home")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join("/tmp/home", ".cache", "gridlay"); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg-config", "gridlay", "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		formats []string
		want    map[string]string
	}{
		{
			name:    "default base",
			input:   "docs/page.toml",
			formats: []string{"svg", "json"},
			want:    map[string]string{"svg": "docs/page.svg", "json": "docs/page.layout.json"},
		},
		{
			name:    "single explicit file",
			input:   "page.toml",
			output:  "out/picture.svg",
			formats: []string{"svg"},
			want:    map[string]string{"svg": "out/picture.svg"},
		},
		{
			name:    "explicit base",
			input:   "page.toml",
			output:  "out/page",
			formats: []string{"text", "tree"},
			want:    map[string]string{"text": "out/page.txt", "tree": "out/page.tree.svg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.input, tt.output, tt.formats)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outputPaths() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
