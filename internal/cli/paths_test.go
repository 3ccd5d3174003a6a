package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symbolkit/pkg/cache"
)

func TestUserDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name  string
		env   string
		value string
		dir   func() (string, error)
		want  string
	}{
		{"cache default", "XDG_CACHE_HOME", "", cacheDir, filepath.Join(home, ".cache", appName)},
		{"cache xdg", "XDG_CACHE_HOME", "/srv/cache", cacheDir, filepath.Join("/srv/cache", appName)},
		{"config default", "XDG_CONFIG_HOME", "", configDir, filepath.Join(home, ".config", appName)},
		{"config xdg", "XDG_CONFIG_HOME", "/etc/xdg", configDir, filepath.Join("/etc/xdg", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			got, err := tt.dir()
			if err != nil {
				t.Fatalf("dir: %v", err)
			}
			if got != tt.want {
				t.Errorf("dir = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigFromConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	path := filepath.Join(xdg, appName, configFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[layout]\nwidth = 640.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Layout.Width != 640 {
		t.Errorf("width = %v, want 640 from %s", cfg.Layout.Width, path)
	}
}

func TestNewCacheLocation(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	ctx := context.Background()

	c := New(io.Discard, log.InfoLevel)
	store, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("newCache() = %T, want a file cache", store)
	}
	if _, err := os.Stat(filepath.Join(xdg, appName)); err != nil {
		t.Errorf("cache directory not created under XDG_CACHE_HOME: %v", err)
	}

	explicit := filepath.Join(t.TempDir(), "results")
	c.Config.Cache.Dir = explicit
	if _, err := c.newCache(ctx, false); err != nil {
		t.Fatalf("newCache with dir: %v", err)
	}
	if _, err := os.Stat(explicit); err != nil {
		t.Errorf("configured cache directory not created: %v", err)
	}

	off, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatalf("newCache(noCache): %v", err)
	}
	if _, ok := off.(cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want a null cache", off)
	}
}
