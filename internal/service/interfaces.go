package service

import (
	"context"

	"github.com/alexanderramin/punchclock/internal/domain"
)

type ClockService interface {
	Record(ctx context.Context, ev domain.ClockEvent) (*RecordResult, error)
	Check(ctx context.Context, kind domain.ClockKind) error
}

type DashboardService interface {
	Today(ctx context.Context) (*TodayView, error)
	Month(ctx context.Context, month string) (*MonthView, error)
	Week(ctx context.Context, start string) (*domain.WeekReport, error)
}

type NoteService interface {
	Get(ctx context.Context, date string) (*domain.DayNote, error)
	Save(ctx context.Context, date, content string) (*domain.DayNote, error)
	Delete(ctx context.Context, date string) error
}

// ClockAPI is the subset of the backend client used to record events.
type ClockAPI interface {
	Today(ctx context.Context) (*domain.DailyStatus, error)
	CreateClockEvent(ctx context.Context, ev domain.ClockEvent) (*domain.ClockEventRecord, error)
}

// ReportAPI is the subset of the backend client used for aggregates.
type ReportAPI interface {
	Today(ctx context.Context) (*domain.DailyStatus, error)
	Month(ctx context.Context, month string) (*domain.MonthReport, error)
	Week(ctx context.Context, start string) (*domain.WeekReport, error)
}

// NoteAPI is the subset of the backend client used for day notes.
type NoteAPI interface {
	GetNote(ctx context.Context, date string) (*domain.DayNote, error)
	PutNote(ctx context.Context, date, content string) (*domain.DayNote, error)
	DeleteNote(ctx context.Context, date string) error
}

// ActionQueue accepts events for later delivery.
type ActionQueue interface {
	Enqueue(ctx context.Context, ev domain.ClockEvent) (*domain.PendingAction, error)
}

// PendingCounter reports how many actions wait for delivery.
type PendingCounter interface {
	Count(ctx context.Context) (int, error)
}
