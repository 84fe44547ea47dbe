package service

import (
	"context"
	"sync"
	"time"

	"vetlab/internal/metrics"
	"vetlab/internal/model"
)

// Broadcaster pushes events to connected clients. *websocket.Hub implements it.
type Broadcaster interface {
	Broadcast(domain model.Domain, event string, data any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(model.Domain, string, any) {}

func orNop(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}

// listCache holds one list for ttl. A zero ttl disables caching.
type listCache[T any] struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	items   []T
	fetched time.Time
	valid   bool
}

func newListCache[T any](name string, ttl time.Duration, now func() time.Time) *listCache[T] {
	if now == nil {
		now = time.Now
	}
	return &listCache[T]{name: name, ttl: ttl, now: now}
}

// get returns the cached list, loading it when stale or when force is set.
func (c *listCache[T]) get(ctx context.Context, force bool, load func(context.Context) ([]T, error)) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !force && c.valid && c.ttl > 0 && c.now().Sub(c.fetched) < c.ttl {
		metrics.CacheLookups.WithLabelValues(c.name, "hit").Inc()
		return append([]T(nil), c.items...), nil
	}
	metrics.CacheLookups.WithLabelValues(c.name, "miss").Inc()
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.items = items
	c.fetched = c.now()
	c.valid = true
	return append([]T(nil), items...), nil
}

func (c *listCache[T]) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.items = nil
	c.mu.Unlock()
}
