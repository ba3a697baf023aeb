package memoryRepository

import (
	"context"
	"sync"

	"github.com/KotFed0t/invest_tracker/data/repository"
)

// MemoryRepository is an in-process blob store for tests and ephemeral runs.
type MemoryRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func New() *MemoryRepository {
	return &MemoryRepository{blobs: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.blobs[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.blobs, key)
	return nil
}

func (r *MemoryRepository) SetMany(_ context.Context, entries map[string][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, value := range entries {
		r.blobs[key] = append([]byte(nil), value...)
	}
	return nil
}
