package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value      any
	expiresAt  time.Time
	lastAccess time.Time
}

// Store is a small in-memory cache for upstream results. Each key
// carries its own staleness TTL; entries untouched for idleAfter are
// swept out entirely.
type Store struct {
	mu        sync.Mutex
	entries   map[string]entry
	idleAfter time.Duration
	flight    singleflight.Group
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewStore(idleAfter, sweepEvery time.Duration) *Store {
	s := &Store{
		entries:   make(map[string]entry),
		idleAfter: idleAfter,
		stop:      make(chan struct{}),
	}
	if idleAfter > 0 && sweepEvery > 0 {
		go s.sweep(sweepEvery)
	}
	return s
}

func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if now.Sub(e.lastAccess) >= s.idleAfter {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.After(now) {
		delete(s.entries, key)
		return nil, false
	}

	e.lastAccess = now
	s.entries[key] = e
	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" || ttl <= 0 {
		return
	}

	now := time.Now()
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: now.Add(ttl), lastAccess: now}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// GetOrLoad returns the fresh cached value for key, loading it at
// most once even under concurrent callers for the same key.
func (s *Store) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
