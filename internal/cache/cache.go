package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urbansense/internal/database"
	"urbansense/internal/features"
	"urbansense/internal/geo"
)

type cacheEntry struct {
	vector    features.Vector
	createdAt time.Time
}

// FeatureCache memoizes feature vectors by rounded coordinate. Lookups hit an
// in-memory map first and fall back to the sqlite table, so cached features
// survive restarts. When the map reaches maxSize the oldest entry is evicted;
// entries older than the TTL are treated as misses.
type FeatureCache struct {
	lock    sync.Mutex
	entries map[string]*cacheEntry
	maxSize int
	ttl     time.Duration
	db      *gorm.DB
}

// New creates a feature cache. db may be nil for a purely in-memory cache.
// ttl <= 0 disables expiry.
func New(db *gorm.DB, maxSize int, ttl time.Duration) *FeatureCache {
	return &FeatureCache{
		entries: make(map[string]*cacheEntry, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		db:      db,
	}
}

// Get returns the cached vector for the point's cache cell, if present and
// fresh.
func (c *FeatureCache) Get(ctx context.Context, point orb.Point) (features.Vector, bool) {
	key := geo.CacheKey(point)

	c.lock.Lock()
	defer c.lock.Unlock()

	if entry, ok := c.entries[key]; ok {
		if c.expired(entry.createdAt) {
			delete(c.entries, key)
		} else {
			return entry.vector, true
		}
	}

	if c.db == nil {
		return features.Vector{}, false
	}

	var row database.CacheEntry
	if err := c.db.WithContext(ctx).First(&row, "key = ?", key).Error; err != nil {
		return features.Vector{}, false
	}
	if c.expired(row.CreatedAt) {
		return features.Vector{}, false
	}

	var vector features.Vector
	if err := json.Unmarshal(row.Features, &vector); err != nil {
		slog.Error("error decoding cached features", "key", key, "error", err)
		return features.Vector{}, false
	}

	c.insertLocked(key, &cacheEntry{vector: vector, createdAt: row.CreatedAt})
	return vector, true
}

// Put stores the vector for the point's cache cell, writing through to the
// database when one is configured.
func (c *FeatureCache) Put(ctx context.Context, point orb.Point, vector features.Vector) {
	key := geo.CacheKey(point)
	now := time.Now().UTC()

	c.lock.Lock()
	c.insertLocked(key, &cacheEntry{vector: vector, createdAt: now})
	c.lock.Unlock()

	if c.db == nil {
		return
	}

	encoded, err := json.Marshal(vector)
	if err != nil {
		slog.Error("error encoding features for cache", "key", key, "error", err)
		return
	}

	rounded := geo.Round(point)
	row := database.CacheEntry{
		Key:       key,
		Latitude:  rounded.Lat(),
		Longitude: rounded.Lon(),
		Features:  encoded,
		CreatedAt: now,
	}
	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		slog.Error("error persisting cache entry", "key", key, "error", err)
	}
}

// Len reports the number of in-memory entries.
func (c *FeatureCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.entries)
}

func (c *FeatureCache) insertLocked(key string, entry *cacheEntry) {
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		oldestKey := ""
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.createdAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.createdAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = entry
}

func (c *FeatureCache) expired(createdAt time.Time) bool {
	return c.ttl > 0 && time.Since(createdAt) > c.ttl
}
