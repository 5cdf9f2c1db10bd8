package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArrive_WithLocationAndGeo(t *testing.T) {
	acc := 12.5
	ev, err := NewArrive(LocationOffice, &Geo{Lat: 52.52, Lng: 13.40, AccuracyM: &acc})
	require.NoError(t, err)
	assert.Equal(t, ClockArrive, ev.Kind)
	require.NotNil(t, ev.Location)
	assert.Equal(t, LocationOffice, *ev.Location)
	require.NotNil(t, ev.Geo)
	assert.InDelta(t, 52.52, ev.Geo.Lat, 1e-9)
}

func TestNewArrive_RejectsUnknownLocation(t *testing.T) {
	_, err := NewArrive(WorkLocation("BEACH"), nil)
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestNewArrive_RejectsOutOfRangeGeo(t *testing.T) {
	_, err := NewArrive(LocationHome, &Geo{Lat: 91, Lng: 0})
	assert.ErrorIs(t, err, ErrInvalidGeo)
}

func TestClockEvent_Validate_LocationOnlyOnArrive(t *testing.T) {
	loc := LocationHome
	ev := NewDepart()
	ev.Location = &loc
	assert.ErrorIs(t, ev.Validate(), ErrFieldNotAllowed)

	ev = NewBreakStart()
	ev.Geo = &Geo{Lat: 1, Lng: 1}
	assert.ErrorIs(t, ev.Validate(), ErrFieldNotAllowed)

	assert.NoError(t, NewBreakEnd().Validate())
}

func TestClockEvent_Validate_UnknownKind(t *testing.T) {
	ev := ClockEvent{Kind: "LUNCH"}
	assert.ErrorIs(t, ev.Validate(), ErrInvalidClockKind)
}

func TestClockEvent_Validate_ClientEventIDLength(t *testing.T) {
	ev := NewDepart()
	ev.ClientEventID = strings.Repeat("x", MaxClientEventIDLen+1)
	assert.ErrorIs(t, ev.Validate(), ErrClientEventIDSize)
}

func TestClockEvent_WithIdempotency(t *testing.T) {
	ts := time.Date(2025, 3, 3, 8, 0, 0, 0, time.FixedZone("CET", 3600))
	ev := NewDepart().WithIdempotency("a1", ts)

	assert.Equal(t, "a1", ev.ClientEventID)
	require.NotNil(t, ev.TsUTC)
	assert.Equal(t, time.UTC, ev.TsUTC.Location())
	assert.True(t, ts.Equal(*ev.TsUTC))
}

func TestParseClockKind(t *testing.T) {
	cases := map[string]ClockKind{
		"ARRIVE":      ClockArrive,
		"COME":        ClockArrive,
		"depart":      ClockDepart,
		"break-start": ClockBreakStart,
		"BREAK_END":   ClockBreakEnd,
	}
	for in, want := range cases {
		got, err := ParseClockKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseClockKind("nap")
	assert.ErrorIs(t, err, ErrInvalidClockKind)
}
