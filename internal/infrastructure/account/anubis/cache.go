package anubis

import (
	"sync"
	"time"

	"github.com/riskibarqy/esports-pickem/internal/domain/user"
)

type principalEntry struct {
	principal user.Principal
	expiresAt time.Time
}

// principalCache keeps verified principals by token hash. A negative ttl
// disables caching.
type principalCache struct {
	mu         sync.RWMutex
	entries    map[string]principalEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func newPrincipalCache(ttl time.Duration, maxEntries int) *principalCache {
	return &principalCache{
		entries:    make(map[string]principalEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *principalCache) Get(key string) (user.Principal, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return user.Principal{}, false
	}
	if !entry.expiresAt.After(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return user.Principal{}, false
	}

	return entry.principal, true
}

func (c *principalCache) Set(key string, principal user.Principal) {
	if c.ttl <= 0 {
		return
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictExpired(now)
		if len(c.entries) >= c.maxEntries {
			c.evictSoonest()
		}
	}
	c.entries[key] = principalEntry{principal: principal, expiresAt: now.Add(c.ttl)}
}

func (c *principalCache) evictExpired(now time.Time) {
	for key, entry := range c.entries {
		if !entry.expiresAt.After(now) {
			delete(c.entries, key)
		}
	}
}

func (c *principalCache) evictSoonest() {
	var (
		victim string
		soon   time.Time
	)
	for key, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(soon) {
			victim, soon = key, entry.expiresAt
		}
	}
	delete(c.entries, victim)
}
