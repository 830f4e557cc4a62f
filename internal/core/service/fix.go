package service

import (
	"context"
	"sync"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
)

// FixCache remembers the last valid GPS fix so reports keep a position
// while the receiver has none.
type FixCache struct {
	src    Locator
	logger logger.Logger

	mu   sync.Mutex
	last domain.Fix
}

// NewFixCache creates a cache reading from src.
func NewFixCache(src Locator, l logger.Logger) *FixCache {
	if l == nil {
		l = logger.Default()
	}
	return &FixCache{src: src, logger: l}
}

// Get reads a fresh fix. When the read fails or the fix is not valid the
// last valid fix is returned, or the zero Fix if there never was one.
func (c *FixCache) Get(ctx context.Context) domain.Fix {
	f, err := c.src.Fix(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Debug("gps read failed, using last fix", "error", err)
		return c.last
	}
	if f.Valid {
		c.last = f
		return f
	}
	return c.last
}

// Last returns the last valid fix without reading.
func (c *FixCache) Last() domain.Fix {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
