// Package cache stores finished extraction attempts so a rerun over the same
// corpus with the same prompt does not repeat vendor calls it already paid for.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rbarros/sentex/internal/model"
)

// Store is a byte-level cache backend.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for one attempt. The prompt is hashed so a prompt
// edit invalidates every prior entry; document and model feed the same hash so
// distinct attempts never collide.
func Key(documentID, modelID, prompt string) string {
	promptHash := sha256.Sum256([]byte(prompt))
	raw := sha256.Sum256([]byte(documentID + "\x00" + modelID + "\x00" + hex.EncodeToString(promptHash[:])))
	return "sentex:v1:" + hex.EncodeToString(raw[:])
}

// ResultCache is a typed view over a Store holding extraction results.
// Only successful attempts are cached; failures stay retryable.
type ResultCache struct {
	store Store
	ttl   time.Duration
}

// NewResultCache wraps a store with the default entry TTL.
func NewResultCache(store Store, ttl time.Duration) *ResultCache {
	return &ResultCache{store: store, ttl: ttl}
}

// Get returns the cached result for an attempt, if present and still valid.
func (c *ResultCache) Get(documentID, modelID, prompt string) (*model.ExtractionResult, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}

	key := Key(documentID, modelID, prompt)
	data, found := c.store.Get(key)
	if !found {
		return nil, false
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		_ = c.store.Delete(key)
		return nil, false
	}
	if !result.Success {
		return nil, false
	}

	return &result, true
}

// Put stores a finished attempt. Failed attempts are dropped silently.
func (c *ResultCache) Put(documentID, modelID, prompt string, result *model.ExtractionResult) error {
	if c == nil || c.store == nil || result == nil || !result.Success {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return c.store.Set(Key(documentID, modelID, prompt), data, c.ttl)
}
