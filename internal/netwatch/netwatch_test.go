package netwatch

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProber struct {
	up atomic.Bool
}

func (p *scriptedProber) Probe(context.Context) bool { return p.up.Load() }

func drained(ch <-chan struct{}) int {
	n := 0
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

func TestMonitor_SignalsOnlyOnReturn(t *testing.T) {
	p := &scriptedProber{}
	m := NewMonitor(p, time.Hour)
	sig := m.Subscribe()
	ctx := context.Background()

	p.up.Store(true)
	assert.True(t, m.Check(ctx))
	assert.Zero(t, drained(sig), "first probe only sets the initial state")

	m.Check(ctx)
	assert.Zero(t, drained(sig), "staying online is not a transition")

	p.up.Store(false)
	assert.False(t, m.Check(ctx))
	assert.False(t, m.Online())
	assert.Zero(t, drained(sig))

	p.up.Store(true)
	m.Check(ctx)
	assert.True(t, m.Online())
	assert.Equal(t, 1, drained(sig))
}

func TestMonitor_SignalsCoalesce(t *testing.T) {
	p := &scriptedProber{}
	m := NewMonitor(p, time.Hour)
	sig := m.Subscribe()
	ctx := context.Background()

	m.Check(ctx)
	for i := 0; i < 3; i++ {
		p.up.Store(true)
		m.Check(ctx)
		p.up.Store(false)
		m.Check(ctx)
	}
	assert.Equal(t, 1, drained(sig))
}

func TestMonitor_FansOutToAllSubscribers(t *testing.T) {
	p := &scriptedProber{}
	m := NewMonitor(p, time.Hour)
	a, b := m.Subscribe(), m.Subscribe()
	ctx := context.Background()

	m.Check(ctx)
	p.up.Store(true)
	m.Check(ctx)

	assert.Equal(t, 1, drained(a))
	assert.Equal(t, 1, drained(b))
}

func TestMonitor_RunProbesAndClosesOnCancel(t *testing.T) {
	p := &scriptedProber{}
	m := NewMonitor(p, 5*time.Millisecond)
	sig := m.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.known
	}, 2*time.Second, time.Millisecond)
	p.up.Store(true)
	select {
	case <-sig:
	case <-time.After(2 * time.Second):
		t.Fatal("no signal after connectivity returned")
	}

	cancel()
	<-done
	_, ok := <-sig
	assert.False(t, ok)
}

func TestTCPProber(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	p := TCPProber{Addr: ln.Addr().String(), Timeout: time.Second}
	assert.True(t, p.Probe(context.Background()))

	require.NoError(t, ln.Close())
	assert.False(t, p.Probe(context.Background()))
}

func TestAddrFromURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{in: "http://localhost:8000", want: "localhost:8000"},
		{in: "https://api.example.com", want: "api.example.com:443"},
		{in: "http://api.example.com/v1", want: "api.example.com:80"},
		{in: "http://[::1]:9000", want: "[::1]:9000"},
		{in: "ftp://example.com", wantErr: true},
		{in: "/relative", wantErr: true},
	}
	for _, tt := range tests {
		got, err := AddrFromURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
