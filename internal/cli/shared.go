package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in")

// localizedError shows a translated message while still matching the
// underlying error with errors.Is.
type localizedError struct {
	msg string
	err error
}

func (e *localizedError) Error() string { return e.msg }
func (e *localizedError) Unwrap() error { return e.err }

// ensureSignedIn restores the session and fails with a localized message
// when nobody is signed in. A pending expiry message is shown first.
func ensureSignedIn(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if err := app.Session.Restore(ctx); err != nil {
		return err
	}
	if app.Session.State().Authenticated() {
		return nil
	}
	if flash, err := app.Session.TakeFlash(ctx); err == nil && flash != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleYellow.Render(flash))
	}
	return &localizedError{msg: app.lang().T(i18n.NotSignedIn), err: errNotSignedIn}
}

// flushPending replays queued actions before new ones are sent so the
// backend sees them in order. Failures only leave the queue as it is.
func flushPending(ctx context.Context, cmd *cobra.Command, app *App) {
	n, err := app.Queue.Count(ctx)
	if err != nil || n == 0 || !app.online(ctx) {
		return
	}
	res, err := app.Queue.Flush(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleRed.Render(err.Error()))
		return
	}
	if res.Sent > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim(app.lang().T(i18n.Flushed, res.Sent, res.Remaining)))
	}
}
