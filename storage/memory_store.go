// storage/memory_store.go
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBlobStore keeps blobs in a map. Used in tests and as a stand-in
// when no database is available.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string]Blob)}
}

func (s *MemoryBlobStore) Put(ctx context.Context, blob Blob) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if blob.ID == "" {
		blob.ID = uuid.NewString()
	}
	if blob.CreatedAt.IsZero() {
		blob.CreatedAt = time.Now().UTC()
	}

	// Copy the data so callers can't mutate stored bytes
	data := make([]byte, len(blob.Data))
	copy(data, blob.Data)
	blob.Data = data

	s.blobs[blob.ID] = blob
	return blob.ID, nil
}

func (s *MemoryBlobStore) Get(ctx context.Context, id string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[id]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return &blob, nil
}

func (s *MemoryBlobStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blobs[id]
	return ok, nil
}
