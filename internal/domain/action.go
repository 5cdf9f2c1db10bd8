package domain

// PendingAction is one durably queued clock event awaiting replay.
// ID doubles as the idempotency key and is echoed into Payload.ClientEventID.
type PendingAction struct {
	ID          string
	CreatedAtMs int64
	Payload     ClockEvent
}

// ClockEventRecord is a clock event as stored by the backend.
type ClockEventRecord struct {
	ID            int64         `json:"id"`
	TsUTC         string        `json:"ts_utc"`
	Kind          ClockKind     `json:"type"`
	Location      *WorkLocation `json:"location"`
	Geo           *Geo          `json:"geo"`
	ClientEventID *string       `json:"client_event_id"`
}
