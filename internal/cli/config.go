package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/symbolkit/pkg/cache"
	"github.com/matzehuels/symbolkit/pkg/errors"
	"github.com/matzehuels/symbolkit/pkg/server"
)

// configFile is the file name looked up in the config directory.
const configFile = "config.toml"

// Config is the on-disk configuration. Command-line flags override it.
//
//	[layout]
//	width = 1280
//	height = 720
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	timeout = "30s"
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  cache.Config `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds the default viewport. Zero keeps the page size.
type LayoutConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// ServerConfig configures `symbolkit serve`.
type ServerConfig struct {
	Addr    string         `toml:"addr"`
	Timeout cache.Duration `toml:"timeout"`
}

func defaultConfig() Config {
	return Config{
		Cache:  cache.Config{Backend: cache.BackendFile},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file yields the defaults; a missing explicit file is an
// error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %s", path, undecoded[0])
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = server.DefaultAddr
	}
	return cfg, nil
}
