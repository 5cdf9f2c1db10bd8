// Package netwatch turns periodic reachability probes of the backend into
// "connectivity returned" signals.
package netwatch

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"
)

// Prober reports whether the backend can currently be reached.
type Prober interface {
	Probe(ctx context.Context) bool
}

// TCPProber dials Addr and closes the connection straight away.
type TCPProber struct {
	Addr    string
	Timeout time.Duration
}

func (p TCPProber) Probe(ctx context.Context) bool {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// AddrFromURL returns host:port for a base URL, using the scheme's default
// port when none is given.
func AddrFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing api url: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("api url %q has no host", raw)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", fmt.Errorf("api url %q: unsupported scheme %q", raw, u.Scheme)
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// Monitor probes on an interval and signals every subscriber on each
// transition from unreachable to reachable. Signals coalesce: a subscriber
// that has not drained its channel receives one pending signal, not many.
type Monitor struct {
	prober   Prober
	interval time.Duration

	mu     sync.Mutex
	online bool
	known  bool
	subs   []chan struct{}
}

func NewMonitor(prober Prober, interval time.Duration) *Monitor {
	return &Monitor{prober: prober, interval: interval}
}

// Subscribe returns a channel that receives a value on every
// unreachable -> reachable transition. It is closed when Run returns.
func (m *Monitor) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Online reports the result of the latest probe. Before the first probe
// it reports false.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Check probes once and records the result, signalling subscribers if the
// backend just became reachable. The first probe only establishes the
// initial state.
func (m *Monitor) Check(ctx context.Context) bool {
	up := m.prober.Probe(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	cameBack := m.known && !m.online && up
	m.online = up
	m.known = true
	if cameBack {
		for _, ch := range m.subs {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
	return up
}

// Run probes immediately and then every interval until ctx ends.
func (m *Monitor) Run(ctx context.Context) {
	defer m.closeSubs()

	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func (m *Monitor) closeSubs() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}
