package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore holds entries in process memory. It serves the common case of
// a retry within the same run; the disk layer covers reruns.
type MemoryStore struct {
	entries *gocache.Cache
}

// NewMemoryStore creates an in-memory store with the given default TTL.
func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{entries: gocache.New(defaultTTL, cleanupInterval)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	if val, found := s.entries.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	s.entries.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.entries.Delete(key)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.entries.Flush()
	return nil
}
