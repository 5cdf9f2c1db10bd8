package domain

import (
	"errors"
	"fmt"
	"time"
)

// ClockKind identifies one of the four clock events a user can record.
type ClockKind string

const (
	ClockArrive     ClockKind = "COME"
	ClockDepart     ClockKind = "GO"
	ClockBreakStart ClockKind = "BREAK_START"
	ClockBreakEnd   ClockKind = "BREAK_END"
)

// ValidClockKinds is the canonical set of accepted clock kinds.
var ValidClockKinds = map[ClockKind]bool{
	ClockArrive: true, ClockDepart: true, ClockBreakStart: true, ClockBreakEnd: true,
}

// ParseClockKind accepts either the wire name or the descriptive alias
// (ARRIVE, DEPART) used on the command line.
func ParseClockKind(s string) (ClockKind, error) {
	switch s {
	case "COME", "ARRIVE", "arrive", "come":
		return ClockArrive, nil
	case "GO", "DEPART", "depart", "go":
		return ClockDepart, nil
	case "BREAK_START", "break-start", "break_start":
		return ClockBreakStart, nil
	case "BREAK_END", "break-end", "break_end":
		return ClockBreakEnd, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidClockKind, s)
}

// WorkLocation is where an arrival happened.
type WorkLocation string

const (
	LocationHome   WorkLocation = "HOME"
	LocationOffice WorkLocation = "OFFICE"
)

// MaxClientEventIDLen is the longest idempotency key the backend accepts.
const MaxClientEventIDLen = 64

var (
	ErrInvalidClockKind  = errors.New("invalid clock event kind")
	ErrInvalidLocation   = errors.New("invalid work location")
	ErrFieldNotAllowed   = errors.New("field not allowed for clock event kind")
	ErrInvalidGeo        = errors.New("invalid geo position")
	ErrClientEventIDSize = errors.New("client event id too long")
)

// Geo is an optional position attached to an arrival.
type Geo struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	AccuracyM *float64 `json:"accuracy_m,omitempty"`
}

// Validate checks coordinate ranges.
func (g Geo) Validate() error {
	if g.Lat < -90 || g.Lat > 90 || g.Lng < -180 || g.Lng > 180 {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidGeo, g.Lat, g.Lng)
	}
	if g.AccuracyM != nil && *g.AccuracyM < 0 {
		return fmt.Errorf("%w: negative accuracy", ErrInvalidGeo)
	}
	return nil
}

// ClockEvent is the request body for creating a clock event. Only ARRIVE
// carries a location and an optional geo position; the constructors below
// are the only supported way to build one.
type ClockEvent struct {
	Kind          ClockKind     `json:"type"`
	Location      *WorkLocation `json:"location,omitempty"`
	Geo           *Geo          `json:"geo,omitempty"`
	TsUTC         *time.Time    `json:"ts_utc,omitempty"`
	ClientEventID string        `json:"client_event_id,omitempty"`
}

// NewArrive builds an arrival at loc, optionally with a position.
func NewArrive(loc WorkLocation, geo *Geo) (ClockEvent, error) {
	ev := ClockEvent{Kind: ClockArrive, Location: &loc, Geo: geo}
	return ev, ev.Validate()
}

// NewDepart builds a departure.
func NewDepart() ClockEvent { return ClockEvent{Kind: ClockDepart} }

// NewBreakStart builds a break start.
func NewBreakStart() ClockEvent { return ClockEvent{Kind: ClockBreakStart} }

// NewBreakEnd builds a break end.
func NewBreakEnd() ClockEvent { return ClockEvent{Kind: ClockBreakEnd} }

// Validate rejects fields that are not valid for the event kind.
func (e ClockEvent) Validate() error {
	if !ValidClockKinds[e.Kind] {
		return fmt.Errorf("%w: %q", ErrInvalidClockKind, e.Kind)
	}
	if len(e.ClientEventID) > MaxClientEventIDLen {
		return fmt.Errorf("%w: %d > %d", ErrClientEventIDSize, len(e.ClientEventID), MaxClientEventIDLen)
	}
	if e.Kind != ClockArrive {
		if e.Location != nil {
			return fmt.Errorf("%w: location on %s", ErrFieldNotAllowed, e.Kind)
		}
		if e.Geo != nil {
			return fmt.Errorf("%w: geo on %s", ErrFieldNotAllowed, e.Kind)
		}
		return nil
	}
	if e.Location != nil && *e.Location != LocationHome && *e.Location != LocationOffice {
		return fmt.Errorf("%w: %q", ErrInvalidLocation, *e.Location)
	}
	if e.Geo != nil {
		return e.Geo.Validate()
	}
	return nil
}

// WithIdempotency returns a copy of e stamped with the idempotency key and
// client timestamp used when the event is queued.
func (e ClockEvent) WithIdempotency(id string, ts time.Time) ClockEvent {
	out := e
	out.ClientEventID = id
	utc := ts.UTC()
	out.TsUTC = &utc
	return out
}
