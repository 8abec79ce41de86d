package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store counts hits per key within a window.
type Store interface {
	// Incr adds one hit and returns the count and the time left in the window.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisStore uses INCR with an EXPIRE set on the first hit.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "jobboard:throttle:"}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = s.prefix + key

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// a crash between INCR and PEXPIRE leaves the key without expiry
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return count, ttl, nil
}

type memoryEntry struct {
	count   int64
	expires time.Time
}

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.expires) {
		if len(s.entries) > 10000 {
			s.evictExpired(now)
		}
		entry = &memoryEntry{expires: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, entry.expires.Sub(now), nil
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for key, entry := range s.entries {
		if !now.Before(entry.expires) {
			delete(s.entries, key)
		}
	}
}
