package presetstore

import (
	"time"

	"github.com/cockroachdb/pebble/v2/vfs"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var ErrInvalidConfig = errors.New("invalid preset store config")

type Config struct {
	// Dir is the pebble data directory.  Required unless InMemory is set.
	Dir string
	// InMemory keeps presets in a sorted in-memory index instead of pebble.
	InMemory bool
	// FS overrides the filesystem used by pebble.  Defaults to the OS filesystem.
	FS vfs.FS
	// CacheSize is the maximum number of decoded presets kept in memory.
	CacheSize int64
	// CacheTTL is how long a decoded preset stays cached.
	CacheTTL time.Duration
	// Concurrency limits the number of presets MatchAll evaluates at once.
	Concurrency int
	Logger      zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		CacheSize:   128,
		CacheTTL:    10 * time.Minute,
		Concurrency: 4,
		Logger:      zerolog.Nop(),
	}
}

func (c Config) Validate() error {
	if !c.InMemory && c.Dir == "" {
		return errors.Wrap(ErrInvalidConfig, "dir is required unless in-memory")
	}
	if c.CacheSize <= 0 {
		return errors.Wrap(ErrInvalidConfig, "cache size must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.Wrap(ErrInvalidConfig, "cache ttl must be positive")
	}
	if c.Concurrency <= 0 {
		return errors.Wrap(ErrInvalidConfig, "match concurrency must be positive")
	}
	return nil
}

// withDefaults replaces unset or non-positive limits with DefaultConfig's.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CacheSize <= 0 {
		c.CacheSize = def.CacheSize
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	return c
}
