package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/invoiceflow/backend/internal/infrastructure/printing"
)

// MemoryStorage keeps documents in process memory.
// Use it for development and tests where no object store is running.
type MemoryStorage struct {
	// BaseURL is the prefix of generated URLs
	// Defaults to "memory://documents" if not set
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		BaseURL: "memory://documents",
		objects: make(map[string][]byte),
	}
}

// Ensure MemoryStorage implements ArtifactStorage
var _ printing.ArtifactStorage = (*MemoryStorage)(nil)

// Store copies the document into memory
func (s *MemoryStorage) Store(ctx context.Context, req *printing.StoreRequest) (*printing.StoreResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := printing.ArtifactKey(req.UserID, req.FileName, time.Now())

	s.mu.Lock()
	s.objects[key] = bytes.Clone(req.Data)
	s.mu.Unlock()

	return &printing.StoreResult{
		Key:  key,
		URL:  s.BaseURL + "/" + key,
		Size: int64(len(req.Data)),
	}, nil
}

// Get returns a reader over a stored document
func (s *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "document not found", nil)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes a document; unknown keys are ignored
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored documents
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
