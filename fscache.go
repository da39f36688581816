package coursedoc

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/akeil/coursedoc/internal/fs"
	"github.com/akeil/coursedoc/internal/logging"
)

// Cache stores derived data, like downscaled images, under a key.
type Cache interface {
	// Get returns the entry for key or a NotFound error.
	Get(key string) (io.ReadCloser, error)
	Put(key string, r io.Reader) error
	Delete(key string) error
}

type fsCache struct {
	dir string
	mx  sync.RWMutex
}

// NewFilesystemCache returns a Cache implementation that stores cached data
// in the given directory.
func NewFilesystemCache(dir string) Cache {
	return &fsCache{dir: dir}
}

func (f *fsCache) Get(key string) (io.ReadCloser, error) {
	f.mx.RLock()
	defer f.mx.RUnlock()

	r, err := os.Open(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("Cache miss %q", key)
			return nil, NewNotFound("no cache entry for %q", key)
		}
		logging.Warning("Cache error %q: %v", key, err)
		return nil, err
	}
	logging.Debug("Cache hit %q", key)
	return r, nil
}

// Put writes the entry atomically, readers never see a partial entry.
func (f *fsCache) Put(key string, r io.Reader) error {
	logging.Debug("Cache put %q", key)
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	f.mx.Lock()
	defer f.mx.Unlock()

	err = os.MkdirAll(f.dir, 0755)
	if err != nil {
		logging.Warning("Failed to create cache directory %q: %v", f.dir, err)
		return err
	}

	return fs.WriteFile(f.path(key), data, 0644)
}

func (f *fsCache) Delete(key string) error {
	logging.Debug("Cache delete %q", key)
	f.mx.Lock()
	defer f.mx.Unlock()

	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *fsCache) path(key string) string {
	return filepath.Join(f.dir, filepath.Base(key))
}
