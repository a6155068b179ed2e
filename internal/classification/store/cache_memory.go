package store

import (
	"context"
	"sync"
	"time"

	"dealer/internal/classification/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
)

type entry struct {
	value     models.Classification
	expiresAt time.Time
}

// InMemoryCache is the single-process classification cache.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[id.ClientID]entry
	now     func() time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[id.ClientID]entry), now: time.Now}
}

func (c *InMemoryCache) Get(_ context.Context, clientID id.ClientID) (*models.Classification, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[clientID]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, sentinel.ErrNotFound
	}
	v := e.value
	return &v, nil
}

func (c *InMemoryCache) Set(_ context.Context, value *models.Classification, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[value.ClientID] = entry{value: *value, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, clientID id.ClientID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, clientID)
	return nil
}
