package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

const (
	memorySweepInterval = time.Minute
	memorySweepFloor    = 1024
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCacheRepository is the in-process fallback used when Redis is
// disabled. Values are stored as JSON so both backends behave alike.
// Expired entries are swept from Set once a minute, or sooner when the map
// doubles since the last sweep.
type MemoryCacheRepository struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time
	sweepSize int
}

// NewMemoryCacheRepository creates an empty cache.
func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{
		entries:   make(map[string]memoryEntry),
		now:       time.Now,
		sweepSize: memorySweepFloor,
	}
}

func (r *MemoryCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	entry, ok := r.lookupLocked(key)
	r.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Take retrieves and deletes key under one lock.
func (r *MemoryCacheRepository) Take(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	entry, ok := r.lookupLocked(key)
	delete(r.entries, key)
	r.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

func (r *MemoryCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	now := r.now()
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	r.mu.Lock()
	r.entries[key] = entry
	if !now.Before(r.nextSweep) || len(r.entries) >= r.sweepSize {
		r.sweepLocked(now)
	}
	r.mu.Unlock()
	return nil
}

func (r *MemoryCacheRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
	return nil
}

// DeleteByPattern removes keys matching a glob in path.Match syntax, which
// agrees with Redis MATCH for keys without '/'.
func (r *MemoryCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("match pattern %s: %w", pattern, err)
		}
		if matched {
			delete(r.entries, key)
		}
	}
	return nil
}

func (r *MemoryCacheRepository) lookupLocked(key string) (memoryEntry, bool) {
	entry, ok := r.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if entry.expired(r.now()) {
		delete(r.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (r *MemoryCacheRepository) sweepLocked(now time.Time) {
	for key, entry := range r.entries {
		if entry.expired(now) {
			delete(r.entries, key)
		}
	}
	r.nextSweep = now.Add(memorySweepInterval)
	r.sweepSize = 2 * len(r.entries)
	if r.sweepSize < memorySweepFloor {
		r.sweepSize = memorySweepFloor
	}
}
