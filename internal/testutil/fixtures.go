package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/google/uuid"
)

// ActionOption customizes a PendingAction fixture.
type ActionOption func(*domain.PendingAction)

func WithActionID(id string) ActionOption {
	return func(a *domain.PendingAction) {
		a.ID = id
		a.Payload.ClientEventID = id
	}
}

func WithCreatedAtMs(ms int64) ActionOption {
	return func(a *domain.PendingAction) {
		a.CreatedAtMs = ms
	}
}

func WithPayload(ev domain.ClockEvent) ActionOption {
	return func(a *domain.PendingAction) {
		id := a.Payload.ClientEventID
		a.Payload = ev
		a.Payload.ClientEventID = id
	}
}

// NewTestAction builds a queued DEPART with a fresh idempotency key.
func NewTestAction(opts ...ActionOption) *domain.PendingAction {
	id := uuid.New().String()
	now := time.Now().UTC()
	a := &domain.PendingAction{
		ID:          id,
		CreatedAtMs: now.UnixMilli(),
		Payload:     domain.NewDepart().WithIdempotency(id, now),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DayOption customizes a DayAggregate fixture.
type DayOption func(*domain.DayAggregate)

func WithAbsence(reason string) DayOption {
	return func(d *domain.DayAggregate) {
		d.Absence = &domain.Absence{
			ID:        1,
			StartDate: d.DateLocal,
			EndDate:   d.DateLocal,
			Reason:    domain.AbsenceReason{ID: 1, Name: reason},
		}
	}
}

func WithNote() DayOption {
	return func(d *domain.DayAggregate) {
		d.HasNote = true
	}
}

// NewTestDay builds a day aggregate for date (YYYY-MM-DD).
func NewTestDay(date string, workedMin int, opts ...DayOption) domain.DayAggregate {
	d := domain.DayAggregate{
		DateLocal:                date,
		WorkedMinutes:            workedMin,
		BreakCompliantTotal:      true,
		BreakCompliantContinuous: true,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// MonthDays builds one DayAggregate per calendar day of year/month with
// worked(date) minutes each.
func MonthDays(year int, month time.Month, worked func(date time.Time) int) []domain.DayAggregate {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var days []domain.DayAggregate
	for d := start; d.Month() == month; d = d.AddDate(0, 0, 1) {
		days = append(days, NewTestDay(d.Format(time.DateOnly), worked(d)))
	}
	return days
}

// NewTestStatus builds today's status with the given target.
func NewTestStatus(date string, targetMin int) domain.DailyStatus {
	return domain.DailyStatus{
		DateLocal:     date,
		Timezone:      "Europe/Berlin",
		State:         domain.StateOff,
		TargetMinutes: targetMin,
	}
}

// StatusWithOvertimeStart sets the configured overtime start date.
func StatusWithOvertimeStart(s domain.DailyStatus, date string) domain.DailyStatus {
	s.OvertimeStartDate = &date
	return s
}

// TestIdentity returns a stable identity fixture.
func TestIdentity(n int) domain.Identity {
	return domain.Identity{ID: int64(n), Email: fmt.Sprintf("user%d@example.com", n), Timezone: "Europe/Berlin"}
}
