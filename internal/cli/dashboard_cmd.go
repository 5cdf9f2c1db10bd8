package cli

import (
	"fmt"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Live view of today and the month; press keys to clock",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			flushPending(ctx, cmd, app)

			if !app.interactive() {
				return printDashboardOnce(cmd, app)
			}

			pendingCh, onPending := coalescingChannel()
			unsubscribe, err := app.Queue.Subscribe(ctx, onPending)
			if err != nil {
				return err
			}
			defer unsubscribe()

			p := tea.NewProgram(newDashboardModel(ctx, app, pendingCh),
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithReportFocus(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}
}

// printDashboardOnce renders the same content as the live view for pipes
// and scripts.
func printDashboardOnce(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	lang := app.lang()

	view, err := app.Dashboard.Month(ctx, "")
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleYellow.Render(describeDashboardErr(lang, err)))
		return err
	}
	n, err := app.Queue.Count(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	today := &service.TodayView{Status: view.Status, Gate: gateOf(view), Pending: n}
	fmt.Fprintln(out, formatter.FormatToday(today, lang))
	fmt.Fprintln(out, formatter.FormatMonth(view, lang))
	return nil
}
