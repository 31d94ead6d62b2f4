package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/cachemeta"
)

type CacheMetadataRepository struct {
	mu    sync.RWMutex
	items map[string]cachemeta.Meta
}

func NewCacheMetadataRepository() *CacheMetadataRepository {
	return &CacheMetadataRepository{items: make(map[string]cachemeta.Meta)}
}

func (r *CacheMetadataRepository) Get(_ context.Context, key string) (cachemeta.Meta, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[key]
	return m, ok, nil
}

func (r *CacheMetadataRepository) RecordSuccess(_ context.Context, key string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.items[key]
	m.Key = key
	m.FetchCount++
	m.LastFetched = &at
	m.LastSuccess = &at
	m.LastError = ""
	r.items[key] = m
	return nil
}

func (r *CacheMetadataRepository) RecordFailure(_ context.Context, key string, at time.Time, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.items[key]
	m.Key = key
	m.FetchCount++
	m.LastFetched = &at
	m.LastError = message
	r.items[key] = m
	return nil
}
