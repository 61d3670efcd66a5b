package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupeStore remembers processed message ids.
type DedupeStore interface {
	Exists(ctx context.Context, messageID string) (bool, error)
	Add(ctx context.Context, messageID string) error
}

// ============================================================================
// In-memory
// ============================================================================

// InMemoryDedupeStore keeps ids in a map until their TTL passes.
type InMemoryDedupeStore struct {
	mu    sync.RWMutex
	store map[string]time.Time
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewInMemoryDedupeStore(ttl time.Duration) *InMemoryDedupeStore {
	return newInMemoryDedupeStore(ttl, time.Minute)
}

func newInMemoryDedupeStore(ttl, cleanupInterval time.Duration) *InMemoryDedupeStore {
	s := &InMemoryDedupeStore{
		store: make(map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go s.cleanup(cleanupInterval)
	return s
}

// Exists reports whether messageID was added and has not expired yet.
func (s *InMemoryDedupeStore) Exists(_ context.Context, messageID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.store[messageID]
	return ok && s.now().Before(expiry), nil
}

func (s *InMemoryDedupeStore) Add(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[messageID] = s.now().Add(s.ttl)
	return nil
}

// Len returns the number of ids held, expired ones included.
func (s *InMemoryDedupeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

// Close stops the cleanup loop.
func (s *InMemoryDedupeStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *InMemoryDedupeStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *InMemoryDedupeStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, expiry := range s.store {
		if !now.Before(expiry) {
			delete(s.store, id)
		}
	}
}

// ============================================================================
// Redis
// ============================================================================

// RedisDedupeStore shares processed ids between consumer instances. Keys
// expire through Redis TTLs.
type RedisDedupeStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisDedupeStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisDedupeStore {
	if prefix == "" {
		prefix = "dedupe:"
	}
	return &RedisDedupeStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisDedupeStore) Exists(ctx context.Context, messageID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+messageID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Add keeps the first writer's expiry when the id is already present.
func (s *RedisDedupeStore) Add(ctx context.Context, messageID string) error {
	return s.client.SetNX(ctx, s.prefix+messageID, time.Now().UTC().Format(time.RFC3339), s.ttl).Err()
}

func (s *RedisDedupeStore) Close() error {
	return s.client.Close()
}
