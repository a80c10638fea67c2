package presetstore

import (
	"slices"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"
	"github.com/pkg/errors"
)

var (
	keyPrefix = []byte("preset/")
	// keyLimit is the first key after every key with keyPrefix.
	keyLimit = []byte("preset0")
)

type pebbleBackend struct {
	db *pebble.DB
}

// OpenPebbleBackend opens, or creates, a pebble database at dir.  fs may be nil to
// use the OS filesystem.
func OpenPebbleBackend(dir string, fs vfs.FS) (Backend, error) {
	opts := &pebble.Options{}
	if fs != nil {
		opts.FS = fs
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open preset store")
	}
	return &pebbleBackend{db: db}, nil
}

func key(name string) []byte {
	return append(slices.Clone(keyPrefix), name...)
}

func (p *pebbleBackend) Get(name string) ([]byte, error) {
	val, closer, err := p.db.Get(key(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrPresetNotFound, "preset %q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read preset %q", name)
	}
	defer closer.Close()
	// val is only valid until closer is closed.
	return slices.Clone(val), nil
}

func (p *pebbleBackend) Put(name string, doc []byte) error {
	return p.db.Set(key(name), doc, pebble.Sync)
}

func (p *pebbleBackend) Delete(name string) error {
	if _, err := p.Get(name); err != nil {
		return err
	}
	return p.db.Delete(key(name), pebble.Sync)
}

func (p *pebbleBackend) Names() ([]string, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: keyLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot list presets")
	}

	names := []string{}
	for iter.First(); iter.Valid(); iter.Next() {
		names = append(names, string(iter.Key()[len(keyPrefix):]))
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrap(err, "cannot list presets")
	}
	return names, nil
}

func (p *pebbleBackend) Close() error {
	return p.db.Close()
}
