package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound reports an absent key.
var ErrNotFound = errors.New("storage: not found")

// Backend is a flat key/value blob store. SecureStore writes every blob to
// a primary and a fallback backend and reads whichever still has it.
type Backend interface {
	Load(key string) (string, error)
	Save(key, value string) error
	Delete(key string) error
}

// MemoryBackend keeps blobs in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string]string)}
}

func (b *MemoryBackend) Load(key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.blobs[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (b *MemoryBackend) Save(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = value
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

// FileBackend keeps each blob in its own file under a directory, mode 0600.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key)
}

func (b *FileBackend) Load(key string) (string, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

func (b *FileBackend) Save(key, value string) error {
	return os.WriteFile(b.path(key), []byte(value), 0o600)
}

func (b *FileBackend) Delete(key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
