package diagnostics

import (
	"os"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// InitDataCache keeps the last raw init data seen, for debugging only.
type InitDataCache interface {
	Store(raw string) error
	Load() (string, error)
}

// MemoryCache is an in-memory InitDataCache
type MemoryCache struct {
	mu  sync.RWMutex
	raw string
}

var _ InitDataCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Store(raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	return nil
}

func (m *MemoryCache) Load() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw, nil
}

// FileCache persists the init data to a single file, replaced atomically.
type FileCache struct {
	path string
}

var _ InitDataCache = (*FileCache)(nil)

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (f *FileCache) Store(raw string) error {
	if err := renameio.WriteFile(f.path, []byte(raw), 0o600); err != nil {
		return errors.Wrapf(err, "[FileCache.Store] failed to write %s", f.path)
	}
	return nil
}

// Load returns an empty string when nothing was cached yet.
func (f *FileCache) Load() (string, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "[FileCache.Load] failed to read %s", f.path)
	}
	return string(b), nil
}
