package service

import (
	"context"
	"errors"
	"sync"

	"github.com/lalith-99/happythoughts/internal/models"
)

var errBackend = errors.New("connection refused")

type memCache struct {
	mu      sync.Mutex
	entries map[string]*models.User
	setErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*models.User)}
}

func (c *memCache) Get(_ context.Context, token string) (*models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.entries[token]
	return u, ok
}

func (c *memCache) Set(_ context.Context, token string, user *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[token] = user
	return nil
}
