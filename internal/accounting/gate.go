package accounting

import "github.com/alexanderramin/punchclock/internal/domain"

// ActionGate lists which clock actions the current state allows.
type ActionGate struct {
	CanArrive     bool
	CanDepart     bool
	CanBreakStart bool
	CanBreakEnd   bool
}

// Any reports whether at least one action is allowed.
func (g ActionGate) Any() bool {
	return g.CanArrive || g.CanDepart || g.CanBreakStart || g.CanBreakEnd
}

// Allows reports whether kind is currently allowed.
func (g ActionGate) Allows(kind domain.ClockKind) bool {
	switch kind {
	case domain.ClockArrive:
		return g.CanArrive
	case domain.ClockDepart:
		return g.CanDepart
	case domain.ClockBreakStart:
		return g.CanBreakStart
	case domain.ClockBreakEnd:
		return g.CanBreakEnd
	}
	return false
}

// Gate derives the allowed actions from today's state. Nothing is allowed
// on an absence day.
func Gate(status domain.DailyStatus) ActionGate {
	if status.Absence != nil {
		return ActionGate{}
	}
	return ActionGate{
		CanArrive:     status.State == domain.StateOff,
		CanDepart:     status.State == domain.StateWorking || status.State == domain.StateBreak,
		CanBreakStart: status.State == domain.StateWorking,
		CanBreakEnd:   status.State == domain.StateBreak,
	}
}
