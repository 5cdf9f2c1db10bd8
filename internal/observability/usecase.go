package observability

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// UseCaseEvent captures lightweight execution telemetry for one client
// operation (enqueue, flush, refresh, login).
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes use-case events to w as slog text records.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 6+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.WarnContext(ctx, "client_use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "client_use_case", attrs...)
}

// OrNoop returns obs, or a NoopUseCaseObserver when obs is nil.
func OrNoop(obs UseCaseObserver) UseCaseObserver {
	if obs == nil {
		return NoopUseCaseObserver{}
	}
	return obs
}

// Track reports one execution of name to obs. Call the returned function with
// the final error once the use case finishes; fields may be filled in between.
func Track(ctx context.Context, obs UseCaseObserver, name string, fields map[string]any) func(err error) {
	start := time.Now()
	return func(err error) {
		obs.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			Duration:  time.Since(start),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
			StartedAt: start,
		})
	}
}
