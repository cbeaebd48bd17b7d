package footlib

import (
	"net"
	"sync"
	"time"
)

// DefaultGeoCacheTTL defines how long geolocation result is considered
// fresh.
const DefaultGeoCacheTTL = time.Hour

type geoCacheEntry struct {
	value     GeoResult
	expiresAt time.Time
}

type geoCacheShard struct {
	mutex   sync.RWMutex
	entries map[string]geoCacheEntry
}

// GeoCache is a cache of geolocation results with per-entry TTL.
//
// Expiration is passive: stale entries are not removed, they are
// ignored by Get and overwritten by Put. There is no background
// goroutine and no capacity bound.
//
// Keys are spread across independent shards so lookups of unrelated IP
// addresses do not contend on the same lock.
type GeoCache struct {
	ttl    time.Duration
	now    func() time.Time
	shards [shardsCount]geoCacheShard
}

// Get returns cached result for an IP address. Second value is false if
// there is no entry or entry has expired.
func (g *GeoCache) Get(ip net.IP) (GeoResult, bool) {
	key := ip.String()
	shard := &g.shards[shardIndex(key)]

	shard.mutex.RLock()
	entry, ok := shard.entries[key]
	shard.mutex.RUnlock()

	if !ok || !g.now().Before(entry.expiresAt) {
		return GeoResult{}, false
	}

	return entry.value, true
}

// Put stores a result. Existing entry is overwritten.
func (g *GeoCache) Put(ip net.IP, result GeoResult) {
	key := ip.String()
	shard := &g.shards[shardIndex(key)]
	entry := geoCacheEntry{
		value:     result,
		expiresAt: g.now().Add(g.ttl),
	}

	shard.mutex.Lock()
	shard.entries[key] = entry
	shard.mutex.Unlock()
}

// Len returns a number of stored entries including expired ones.
func (g *GeoCache) Len() int {
	rv := 0

	for i := range g.shards {
		g.shards[i].mutex.RLock()
		rv += len(g.shards[i].entries)
		g.shards[i].mutex.RUnlock()
	}

	return rv
}

// TTL returns time-to-live of cache entries.
func (g *GeoCache) TTL() time.Duration {
	return g.ttl
}

// NewGeoCache creates a new cache. If ttl is not positive,
// DefaultGeoCacheTTL is used.
func NewGeoCache(ttl time.Duration) *GeoCache {
	if ttl <= 0 {
		ttl = DefaultGeoCacheTTL
	}

	rv := &GeoCache{
		ttl: ttl,
		now: time.Now,
	}

	for i := range rv.shards {
		rv.shards[i].entries = map[string]geoCacheEntry{}
	}

	return rv
}
