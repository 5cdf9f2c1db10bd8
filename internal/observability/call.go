package observability

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// CallEvent records metadata about a single backend HTTP call.
type CallEvent struct {
	Method     string
	Path       string
	Status     int
	LatencyMs  int64
	Success    bool
	ErrorCode  string
	WithBearer bool
}

// CallObserver receives events about backend calls.
type CallObserver interface {
	OnCallComplete(event CallEvent)
}

// LogCallObserver writes call events to an io.Writer, one line each.
type LogCallObserver struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogCallObserver creates a CallObserver that logs events to w.
func NewLogCallObserver(w io.Writer) *LogCallObserver {
	return &LogCallObserver{w: w}
}

func (o *LogCallObserver) OnCallComplete(event CallEvent) {
	ts := time.Now().UTC().Format(time.RFC3339)
	status := "ok"
	if !event.Success {
		status = "err:" + event.ErrorCode
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.w, "[%s] api_call method=%s path=%s status_code=%d latency_ms=%d bearer=%t status=%s\n",
		ts, event.Method, event.Path, event.Status, event.LatencyMs, event.WithBearer, status)
}

// NoopCallObserver discards all events. Useful for tests.
type NoopCallObserver struct{}

func (NoopCallObserver) OnCallComplete(CallEvent) {}
