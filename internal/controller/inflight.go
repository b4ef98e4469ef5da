package controller

import (
	"context"
	"sync"
)

// inflight serializes mutations per key. A key is busy from acquire until
// the returned release func is called.
type inflight struct {
	mu   sync.Mutex
	busy map[string]chan struct{}
}

func newInflight() *inflight {
	return &inflight{busy: make(map[string]chan struct{})}
}

// acquire waits until key is free, then marks it busy.
func (g *inflight) acquire(ctx context.Context, key string) (func(), error) {
	for {
		g.mu.Lock()
		wait, taken := g.busy[key]
		if !taken {
			done := make(chan struct{})
			g.busy[key] = done
			g.mu.Unlock()
			return func() {
				g.mu.Lock()
				delete(g.busy, key)
				g.mu.Unlock()
				close(done)
			}, nil
		}
		g.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (g *inflight) isBusy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[key]
	return ok
}
