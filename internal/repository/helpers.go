package repository

import (
	"database/sql"
	"time"

	"github.com/bytedance/sonic"
)

// codec is the JSON configuration for blobs persisted in SQLite. It matches
// encoding/json output so rows stay readable by other tools.
var codec = sonic.ConfigStd

func encodeJSON(v any) (string, error) {
	return codec.MarshalToString(v)
}

func decodeJSON(s string, v any) error {
	return codec.UnmarshalFromString(s, v)
}

// parseNullableTime parses a sql.NullString into a *time.Time using layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString returns SQL NULL for a zero time.
func nullableTimeToString(t time.Time, layout string) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(layout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
