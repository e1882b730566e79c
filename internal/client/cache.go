package client

import (
	"sync"
)

// cache holds fetched responses keyed by resource key. Entries live until
// explicitly invalidated; there is no TTL or background revalidation.
type cache struct {
	mu   sync.RWMutex
	data map[string][]byte

	// flight serializes refetches per key: two concurrent reads of the
	// same key share one fetch, distinct keys fetch independently
	flightMu sync.Mutex
	flight   map[string]*sync.Mutex
}

func newCache() *cache {
	return &cache{
		data:   make(map[string][]byte),
		flight: make(map[string]*sync.Mutex),
	}
}

func (c *cache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.data[key]
	return data, ok
}

func (c *cache) set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

func (c *cache) invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
}

// keyLock returns the per-key fetch lock, creating it on first use
func (c *cache) keyLock(key string) *sync.Mutex {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()
	lock, ok := c.flight[key]
	if !ok {
		lock = &sync.Mutex{}
		c.flight[key] = lock
	}
	return lock
}
