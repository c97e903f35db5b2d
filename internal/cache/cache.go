package cache

import (
	"sync"
	"time"

	"rently/internal/providers"
	"rently/internal/structures"
)

// Entry is a cached value with its write time and expiry.
type Entry struct {
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Cache is a TTL map with an optional durable mirror. Reads check memory
// first and fall back to the mirror, repopulating memory on a hit. Writes
// go to both tiers; a mirror failure degrades to memory-only. A background
// sweep evicts expired entries. There is no size bound beyond TTL expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	sweep   time.Duration
	mirror  MirrorInterface
	logger  providers.Logger
	clock   func() time.Time
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewCache(conf *structures.Config, mirror MirrorInterface, logger providers.Logger) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     conf.EntityCache.TTL,
		sweep:   conf.EntityCache.SweepInterval,
		mirror:  mirror,
		logger:  logger,
		clock:   time.Now,
	}
}

// Start launches the periodic sweep. Safe to call once per instance.
func (c *Cache) Start() {
	c.done = make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					c.logger.Debugf(providers.TypeApp, "Cache sweep evicted %d entries", n)
				}
			case <-c.done:
				return
			}
		}
	}()
}

func (c *Cache) Stop() {
	if c.done == nil {
		return
	}
	close(c.done)
	c.wg.Wait()
	c.done = nil
}

// Get returns the cached value for key, falling back to the durable
// mirror. Expired entries are treated as misses.
func (c *Cache) Get(key string) ([]byte, bool) {
	now := c.clock()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && now.Before(e.ExpiresAt) {
		return e.Data, true
	}

	if me, ok := c.mirror.Get(key); ok && now.Before(me.ExpiresAt) {
		c.mu.Lock()
		c.entries[key] = me
		c.mu.Unlock()
		return me.Data, true
	}
	return nil, false
}

// Set stores data under key with the default TTL in both tiers. A durable
// write failure is logged and tolerated.
func (c *Cache) Set(key string, data []byte) {
	c.SetWithTTL(key, data, c.ttl)
}

func (c *Cache) SetWithTTL(key string, data []byte, ttl time.Duration) {
	now := c.clock()
	e := Entry{Data: data, Timestamp: now, ExpiresAt: now.Add(ttl)}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()

	if err := c.mirror.Set(key, e); err != nil {
		c.logger.Warnf(providers.TypeApp, "Cache mirror write failed for %q, keeping memory-only: %s", key, err)
	}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.mirror.Delete(key)
}

// Sweep evicts every expired entry and returns the eviction count.
func (c *Cache) Sweep() int {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, k)
			c.mirror.Delete(k)
			n++
		}
	}
	return n
}

// entry exposes the raw entry for in-place mutation by MessageCache.
func (c *Cache) entry(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) put(key string, e Entry) {
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	if err := c.mirror.Set(key, e); err != nil {
		c.logger.Warnf(providers.TypeApp, "Cache mirror write failed for %q, keeping memory-only: %s", key, err)
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
