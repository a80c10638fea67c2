package presetstore

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

// memoryBackend keeps documents in a name-ordered b-tree.
type memoryBackend struct {
	lock *sync.RWMutex
	docs btree.Map[string, []byte]
}

// NewMemoryBackend returns a backend which keeps documents in memory only.
func NewMemoryBackend() Backend {
	return &memoryBackend{lock: &sync.RWMutex{}}
}

func (m *memoryBackend) Get(name string) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	doc, ok := m.docs.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrPresetNotFound, "preset %q", name)
	}
	return slices.Clone(doc), nil
}

func (m *memoryBackend) Put(name string, doc []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.docs.Set(name, slices.Clone(doc))
	return nil
}

func (m *memoryBackend) Delete(name string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.docs.Delete(name); !ok {
		return errors.Wrapf(ErrPresetNotFound, "preset %q", name)
	}
	return nil
}

func (m *memoryBackend) Names() ([]string, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	names := make([]string, 0, m.docs.Len())
	m.docs.Scan(func(name string, _ []byte) bool {
		names = append(names, name)
		return true
	})
	return names, nil
}

func (m *memoryBackend) Close() error {
	return nil
}
