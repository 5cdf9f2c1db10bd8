package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/transport"
)

// MaxNoteLength is the longest note the backend stores, in characters.
const MaxNoteLength = 4000

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")
	ErrNoteTooLong  = errors.New("note too long")
)

// Doer performs an authenticated backend call.
type Doer interface {
	Do(ctx context.Context, req *transport.Request, out any) error
}

// Client exposes the backend endpoints the punch client uses.
type Client struct {
	doer Doer
}

// New creates a Client on top of an authenticated Doer.
func New(doer Doer) *Client {
	return &Client{doer: doer}
}

func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	var out domain.Identity
	if err := c.doer.Do(ctx, &transport.Request{Path: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Today returns the server-computed status for the current local day.
func (c *Client) Today(ctx context.Context) (*domain.DailyStatus, error) {
	var out domain.DailyStatus
	if err := c.doer.Do(ctx, &transport.Request{Path: "/dashboard/today"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Month returns the report for month (YYYY-MM); "" asks for the current one.
func (c *Client) Month(ctx context.Context, month string) (*domain.MonthReport, error) {
	req := &transport.Request{Path: "/reports/month"}
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
		}
		req.Query = url.Values{"month": {month}}
	}
	var out domain.MonthReport
	if err := c.doer.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Week returns the report for the week containing start; "" asks for the
// current week.
func (c *Client) Week(ctx context.Context, start string) (*domain.WeekReport, error) {
	req := &transport.Request{Path: "/reports/week"}
	if start != "" {
		if err := checkDate(start); err != nil {
			return nil, err
		}
		req.Query = url.Values{"start": {start}}
	}
	var out domain.WeekReport
	if err := c.doer.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateClockEvent records ev. Replaying the same ClientEventID returns the
// event stored the first time.
func (c *Client) CreateClockEvent(ctx context.Context, ev domain.ClockEvent) (*domain.ClockEventRecord, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	var out domain.ClockEventRecord
	err := c.doer.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   "/clock/events",
		Body:   ev,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendClockEvent is CreateClockEvent without the response, for queue replay.
func (c *Client) SendClockEvent(ctx context.Context, ev domain.ClockEvent) error {
	_, err := c.CreateClockEvent(ctx, ev)
	return err
}

// ListClockEvents returns the most recent events, newest last.
func (c *Client) ListClockEvents(ctx context.Context, limit int) ([]domain.ClockEventRecord, error) {
	req := &transport.Request{Path: "/clock/events"}
	if limit > 0 {
		req.Query = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []domain.ClockEventRecord
	if err := c.doer.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNote returns the note for date, or nil when there is none.
func (c *Client) GetNote(ctx context.Context, date string) (*domain.DayNote, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	var out *domain.DayNote
	if err := c.doer.Do(ctx, &transport.Request{Path: "/notes/" + date}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PutNote(ctx context.Context, date, content string) (*domain.DayNote, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(content); n > MaxNoteLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrNoteTooLong, n, MaxNoteLength)
	}
	body := struct {
		Content string `json:"content"`
	}{Content: content}
	var out domain.DayNote
	err := c.doer.Do(ctx, &transport.Request{
		Method: http.MethodPut,
		Path:   "/notes/" + date,
		Body:   body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNote(ctx context.Context, date string) error {
	if err := checkDate(date); err != nil {
		return err
	}
	return c.doer.Do(ctx, &transport.Request{Method: http.MethodDelete, Path: "/notes/" + date}, nil)
}

func checkDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}
