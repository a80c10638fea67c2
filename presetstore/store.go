// Package presetstore persists named filter presets.
//
// Presets are stored in their encoded document form and decoded on load.  Decoded
// presets are cached by name, so repeatedly opening the same preset doesn't re-parse
// its document.
package presetstore

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/karlseguin/ccache/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/bidsio/filter"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidName    = errors.New("invalid preset name")
)

// Backend stores encoded preset documents by name.
type Backend interface {
	Get(name string) ([]byte, error)
	Put(name string, doc []byte) error
	// Delete removes name, returning ErrPresetNotFound if it doesn't exist.
	Delete(name string) error
	// Names returns every stored name in ascending order.
	Names() ([]string, error)
	Close() error
}

// Store saves, loads and deletes named presets.  Stores are safe for concurrent use.
type Store struct {
	backend Backend
	cache   *ccache.Cache
	ttl     time.Duration
	cfg     Config
	log     zerolog.Logger

	hits   int64
	misses int64
}

// Open opens the store described by cfg: pebble at cfg.Dir, or an in-memory index
// when cfg.InMemory is set.
func Open(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		backend Backend
		err     error
	)
	if cfg.InMemory {
		backend = NewMemoryBackend()
	} else {
		backend, err = OpenPebbleBackend(cfg.Dir, cfg.FS)
		if err != nil {
			return nil, err
		}
	}
	return New(backend, cfg), nil
}

// New returns a store over an existing backend.  Limits left unset in cfg take
// their DefaultConfig values.
func New(backend Backend, cfg Config) *Store {
	cfg = cfg.withDefaults()
	return &Store{
		backend: backend,
		cache:   ccache.New(ccache.Configure().MaxSize(cfg.CacheSize)),
		ttl:     cfg.CacheTTL,
		cfg:     cfg,
		log:     cfg.Logger,
	}
}

// ValidateName checks that name can be used as a preset name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Wrap(ErrInvalidName, "name is empty")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return errors.Wrapf(ErrInvalidName, "name %q contains a path separator", name)
	}
	return nil
}

// Save encodes p and stores it under name, replacing any existing preset.
func (s *Store) Save(ctx context.Context, name string, p *filter.Preset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if p == nil {
		return filter.ErrEmptyFilter
	}

	doc, err := filter.Marshal(p.Root, p.Mode)
	if err != nil {
		return errors.Wrapf(err, "cannot encode preset %q", name)
	}
	if err := s.backend.Put(name, doc); err != nil {
		return errors.Wrapf(err, "cannot save preset %q", name)
	}
	s.cache.Delete(name)

	s.log.Info().Str("preset", name).Str("mode", string(p.Mode)).Msg("saved preset")
	return nil
}

// Load returns the preset stored under name.
func (s *Store) Load(ctx context.Context, name string) (*filter.Preset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if item := s.cache.Get(name); item != nil && !item.Expired() {
		atomic.AddInt64(&s.hits, 1)
		return copyPreset(item.Value().(*filter.Preset)), nil
	}
	atomic.AddInt64(&s.misses, 1)

	doc, err := s.backend.Get(name)
	if err != nil {
		return nil, err
	}
	p, err := filter.Unmarshal(doc)
	if err != nil {
		s.log.Warn().Err(err).Str("preset", name).Msg("cannot decode preset")
		return nil, errors.Wrapf(err, "cannot load preset %q", name)
	}

	s.cache.Set(name, p, s.ttl)
	s.log.Debug().Str("preset", name).Msg("decoded preset")
	return copyPreset(p), nil
}

// Delete removes the preset stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cache.Delete(name)
	if err := s.backend.Delete(name); err != nil {
		return err
	}
	s.log.Info().Str("preset", name).Msg("deleted preset")
	return nil
}

// List returns every preset name in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.backend.Names()
}

// Hits returns the number of loads served from the decode cache.
func (s *Store) Hits() int64 {
	return atomic.LoadInt64(&s.hits)
}

// Misses returns the number of loads which decoded a stored document.
func (s *Store) Misses() int64 {
	return atomic.LoadInt64(&s.misses)
}

func (s *Store) Close() error {
	s.cache.Stop()
	return s.backend.Close()
}

// copyPreset returns a copy which shares nothing with the cached preset.
func copyPreset(p *filter.Preset) *filter.Preset {
	cp := *p
	cp.Root = p.Root.Clone()
	return &cp
}
