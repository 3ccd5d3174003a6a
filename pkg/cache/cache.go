// Package cache stores pipeline results keyed by the hash of their inputs.
//
// Expanding and laying out a large design is deterministic, so the CLI and
// the HTTP server keep results around and skip the work when the same
// document and options come in again.
//
// # Backends
//
//   - [FileCache]: sharded JSON files under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, TTL handled by Redis
//   - [MongoCache]: a MongoDB collection with a TTL index on expires_at
//   - [NullCache]: stores nothing (--no-cache)
//
// [Open] builds one of them from a [Config].
//
// # Keys
//
// A [Keyer] derives keys from input hashes and stage options, so a change
// to the design, the rules or any option lands on a different key.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's connections.
	Close() error
}

// Default time-to-live per stage.
const (
	TTLExpand   = 7 * 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// ExpandKey keys an expansion result by the hashes of its inputs.
	ExpandKey(designHash, rulesHash string) string

	// LayoutKey keys per-node frames computed from an expanded input.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact (DOT or SVG).
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout options that change the result.
type LayoutKeyOpts struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Node       string  `json:"node,omitempty"`
	KeepOrigin bool    `json:"keep_origin,omitempty"`
}

// ArtifactKeyOpts are the render options that change the result.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer builds keys of the form "stage:sha256(parts)".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) ExpandKey(designHash, rulesHash string) string {
	return hashKey("expand", designHash, rulesHash)
}

func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of file, redis, mongo or none. Empty means file.
	Backend string `toml:"backend" json:"backend"`

	// Dir is the FileCache directory.
	Dir string `toml:"dir" json:"dir"`

	// TTL overrides the per-stage defaults when positive.
	TTL Duration `toml:"ttl" json:"ttl"`

	RedisAddr     string `toml:"redis_addr" json:"redis_addr"`
	MongoURI      string `toml:"mongo_uri" json:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database" json:"mongo_database"`
}

// Duration is a time.Duration that decodes from strings like "12h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// TTLFor returns the configured TTL, or def when none is set.
func (c Config) TTLFor(def time.Duration) time.Duration {
	if c.TTL > 0 {
		return time.Duration(c.TTL)
	}
	return def
}

// Open connects the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
