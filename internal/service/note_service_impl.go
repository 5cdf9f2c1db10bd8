package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/observability"
	"github.com/alexanderramin/punchclock/internal/transport"
)

type noteService struct {
	api      NoteAPI
	observer observability.UseCaseObserver
}

func NewNoteService(api NoteAPI, observers ...observability.UseCaseObserver) NoteService {
	return &noteService{api: api, observer: firstObserver(observers)}
}

func (s *noteService) Get(ctx context.Context, date string) (*domain.DayNote, error) {
	return s.api.GetNote(ctx, date)
}

// Save stores content for date. Blank content deletes the note instead and
// returns a nil note; deleting a note that does not exist is not an error.
func (s *noteService) Save(ctx context.Context, date, content string) (note *domain.DayNote, err error) {
	done := observability.Track(ctx, s.observer, "note.save", map[string]any{"date": date, "length": len(content)})
	defer func() { done(err) }()

	if strings.TrimSpace(content) == "" {
		if err := s.api.DeleteNote(ctx, date); err != nil && !isNotFound(err) {
			return nil, err
		}
		return nil, nil
	}
	return s.api.PutNote(ctx, date, content)
}

func (s *noteService) Delete(ctx context.Context, date string) (err error) {
	done := observability.Track(ctx, s.observer, "note.delete", map[string]any{"date": date})
	defer func() { done(err) }()
	return s.api.DeleteNote(ctx, date)
}

func isNotFound(err error) bool {
	var apiErr *transport.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
