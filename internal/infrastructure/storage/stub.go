package storage

import (
	"context"
	"sync"

	apporder "github.com/stockroom/backend/internal/application/order"
)

var _ apporder.LabelStore = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in process memory. The integration suite
// archives labels into it.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// Object is a stored blob
type Object struct {
	Data        []byte
	ContentType string
}

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]Object)}
}

// ObjectExists reports whether key has been uploaded
func (s *MemoryObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Upload stores a copy of data under key
func (s *MemoryObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// Get returns the object stored under key
func (s *MemoryObjectStorage) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}
