package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/btree"
)

const (
	shardCount     = 64
	defaultMaxSize = 4096
)

type CacheEntry struct {
	Key        string
	Value      []byte
	Expiry     time.Time
	Frequency  uint32 // LFU eviction
	LastAccess int64  // LRU tie-break
}

func byKey(a, b CacheEntry) bool { return a.Key < b.Key }

type Shard struct {
	items    *btree.BTreeG[CacheEntry]
	lock     sync.Mutex
	maxItems int
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a sharded in-memory byte cache with expiry and least frequently
// used eviction.
type Cache struct {
	shards  [shardCount]*Shard
	maxSize int
	now     func() time.Time

	hits, misses, evictions atomic.Uint64
}

func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	perShard := maxSize / shardCount
	if perShard < 1 {
		perShard = 1
	}

	c := &Cache{maxSize: maxSize, now: time.Now}
	for i := range c.shards {
		c.shards[i] = &Shard{
			items:    btree.NewBTreeG(byKey),
			maxItems: perShard,
		}
	}
	return c
}

func (c *Cache) Get(key string) ([]byte, bool) {
	shard := c.shards[c.shardIndex(key)]
	shard.lock.Lock()
	defer shard.lock.Unlock()

	entry, ok := shard.items.Get(CacheEntry{Key: key})
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	now := c.now()
	if now.After(entry.Expiry) {
		shard.items.Delete(entry)
		c.misses.Add(1)
		return nil, false
	}

	entry.Frequency++
	entry.LastAccess = now.UnixNano()
	shard.items.Set(entry)

	c.hits.Add(1)
	return entry.Value, true
}

// Set stores value until expiry, evicting from the shard when it is full.
func (c *Cache) Set(key string, value []byte, expiry time.Time) {
	shard := c.shards[c.shardIndex(key)]
	shard.lock.Lock()
	defer shard.lock.Unlock()

	entry := CacheEntry{
		Key:        key,
		Value:      value,
		Expiry:     expiry,
		Frequency:  1,
		LastAccess: c.now().UnixNano(),
	}

	if _, exists := shard.items.Get(entry); !exists && shard.items.Len() >= shard.maxItems {
		c.evict(shard)
	}

	shard.items.Set(entry)
}

func (c *Cache) Delete(key string) {
	shard := c.shards[c.shardIndex(key)]
	shard.lock.Lock()
	shard.items.Delete(CacheEntry{Key: key})
	shard.lock.Unlock()
}

func (c *Cache) Len() int {
	n := 0
	for _, shard := range c.shards {
		shard.lock.Lock()
		n += shard.items.Len()
		shard.lock.Unlock()
	}
	return n
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *Cache) shardIndex(key string) uint64 {
	return xxhash.Sum64String(key) % shardCount
}

// evict drops expired entries, or the least frequently used one when nothing
// has expired. Caller holds shard.lock.
func (c *Cache) evict(shard *Shard) {
	now := c.now()

	var (
		expired []CacheEntry
		victim  CacheEntry
		found   bool
	)
	shard.items.Scan(func(entry CacheEntry) bool {
		if now.After(entry.Expiry) {
			expired = append(expired, entry)
			return true
		}
		if !found ||
			entry.Frequency < victim.Frequency ||
			(entry.Frequency == victim.Frequency && entry.LastAccess < victim.LastAccess) {
			victim, found = entry, true
		}
		return true
	})

	if len(expired) > 0 {
		for _, entry := range expired {
			shard.items.Delete(entry)
		}
		c.evictions.Add(uint64(len(expired)))
		return
	}
	if found {
		shard.items.Delete(victim)
		c.evictions.Add(1)
	}
}

// Clear removes all items from cache
func (c *Cache) Clear() {
	for _, shard := range c.shards {
		shard.lock.Lock()
		shard.items = btree.NewBTreeG(byKey)
		shard.lock.Unlock()
	}
}
