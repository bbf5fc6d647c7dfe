// Package coalesce collapses concurrent calls to the same logical remote
// operation into a single in-flight call.
package coalesce

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Group deduplicates calls by key. For a given key at most one operation is
// outstanding; callers that arrive while it runs receive the same result.
// The entry is dropped as soon as the call settles, so the next call under
// the same key starts fresh. There is no queueing, retry or timeout.
//
// The zero value is ready to use.
type Group[T any] struct {
	flight singleflight.Group

	mu      sync.Mutex
	pending map[string]struct{}

	Logger *zap.Logger
}

// New returns a Group that logs joins at debug level.
func New[T any](logger *zap.Logger) *Group[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Group[T]{Logger: logger}
}

// Do runs op under key unless a call with the same key is already in
// flight, in which case it waits for that call and returns its outcome.
// op receives the context of the caller that started it.
func (g *Group[T]) Do(ctx context.Context, key string, op func(context.Context) (T, error)) (T, error) {
	v, err, shared := g.flight.Do(key, func() (interface{}, error) {
		g.track(key, true)
		defer g.track(key, false)
		return op(ctx)
	})
	if shared {
		g.logger().Debug("coalesced call", zap.String("key", key), zap.Bool("failed", err != nil))
	}
	res, _ := v.(T)
	return res, err
}

// Pending reports how many keys currently have a call in flight.
func (g *Group[T]) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// InFlight reports whether a call is outstanding under key.
func (g *Group[T]) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[key]
	return ok
}

func (g *Group[T]) track(key string, started bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		g.pending = make(map[string]struct{})
	}
	if started {
		g.pending[key] = struct{}{}
		return
	}
	delete(g.pending, key)
}

func (g *Group[T]) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}
