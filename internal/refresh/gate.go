// Package refresh decides when on-screen aggregates should be reloaded:
// on an interval while visible, and immediately on becoming visible.
package refresh

import (
	"context"
	"sync"
	"time"
)

// Gate tracks visibility. It starts visible.
type Gate struct {
	mu      sync.Mutex
	visible bool
}

func NewGate() *Gate {
	return &Gate{visible: true}
}

// Visible reports the current visibility.
func (g *Gate) Visible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visible
}

// SetVisible records v and reports whether a reload is due now, which is
// the case only on a hidden -> visible change.
func (g *Gate) SetVisible(v bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	due := v && !g.visible
	g.visible = v
	return due
}

// OnTick reports whether an interval tick should reload.
func (g *Gate) OnTick() bool {
	return g.Visible()
}

// Run calls reload every interval while visible until ctx ends.
func (g *Gate) Run(ctx context.Context, interval time.Duration, reload func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if g.OnTick() {
				reload(ctx)
			}
		}
	}
}
