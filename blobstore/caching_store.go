package blobstore

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a Store and keeps fetched values in memory.
//
// Preference reads vastly outnumber writes, so the typical deployment
// fronts a FileStore (or an object-store adapter) with a CachingStore and
// pays the filesystem round trip once per name. Saves go through to the
// inner store first and update the cache only after the inner save
// committed, so the cache never gets ahead of durable state.
type CachingStore struct {
	inner Store
	group singleflight.Group

	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ Store = (*CachingStore)(nil)

// NewCachingStore creates a read-through cache around inner.
func NewCachingStore(inner Store) *CachingStore {
	return &CachingStore{
		inner: inner,
		blobs: make(map[string][]byte),
	}
}

// Names delegates to the inner store; the backing storage stays the
// authority on what exists.
func (s *CachingStore) Names(ctx context.Context) []string {
	return s.inner.Names(ctx)
}

// Fetch returns the cached bytes for name, fetching from the inner store
// on a miss. Concurrent cold fetches of the same name are collapsed into a
// single inner fetch.
func (s *CachingStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.blobs[name]
	s.mu.RUnlock()

	if !ok {
		v, err, _ := s.group.Do(name, func() (any, error) {
			fetched, err := s.inner.Fetch(ctx, name)
			if err != nil {
				return nil, err
			}

			s.mu.Lock()
			s.blobs[name] = fetched
			s.mu.Unlock()

			return fetched, nil
		})
		if err != nil {
			return nil, err
		}
		data = v.([]byte)
	}

	// Return a copy to prevent external mutation of the cache.
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// Save writes through to the inner store and caches data on success.
func (s *CachingStore) Save(ctx context.Context, name string, data []byte) error {
	if err := s.inner.Save(ctx, name, data); err != nil {
		return err
	}

	copied := make([]byte, len(data))
	copy(copied, data)

	s.mu.Lock()
	s.blobs[name] = copied
	s.mu.Unlock()

	return nil
}

// Remove removes name from the inner store and drops the cache entry.
func (s *CachingStore) Remove(ctx context.Context, name string) error {
	if err := s.inner.Remove(ctx, name); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.blobs, name)
	s.mu.Unlock()

	return nil
}

// Preload warms the cache with every name the inner store lists. This is
// the startup pattern of a preferences layer: load everything once, then
// serve reads from memory.
func (s *CachingStore) Preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, name := range s.inner.Names(ctx) {
		g.Go(func() error {
			_, err := s.Fetch(ctx, name)
			return err
		})
	}

	return g.Wait()
}
