package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Backend stores encoded values under string keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// sweepEvery is how many writes pass between scans for expired entries.
const sweepEvery = 256

type item struct {
	payload  []byte
	deadline time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.deadline.IsZero() && !now.Before(it.deadline)
}

// Store is the in-process Backend, used when a single API replica runs or in
// tests. A zero ttl keeps entries until they are deleted.
type Store struct {
	mu     sync.Mutex
	items  map[string]item
	ttl    time.Duration
	writes int
	now    func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{items: map[string]item{}, ttl: ttl, now: time.Now}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if it.expired(s.now()) {
		delete(s.items, key)
		return nil, false, nil
	}
	return it.payload, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return nil
	}

	it := item{payload: append([]byte(nil), value...)}
	now := s.now()
	if s.ttl > 0 {
		it.deadline = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = it
	s.writes++
	if s.writes%sweepEvery == 0 {
		for k, v := range s.items {
			if v.expired(now) {
				delete(s.items, k)
			}
		}
	}
	return nil
}

// DeletePrefix removes every key starting with prefix. An empty prefix is a no-op.
func (s *Store) DeletePrefix(_ context.Context, prefix string) error {
	if prefix == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			delete(s.items, k)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
