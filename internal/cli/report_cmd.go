package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/refresh"
	"github.com/spf13/cobra"
)

func newTodayCmd(app *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's status and allowed actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			flushPending(ctx, cmd, app)

			show := func(ctx context.Context) error {
				view, err := app.Dashboard.Today(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatToday(view, app.lang()))
				return nil
			}
			if err := show(ctx); err != nil || !watch {
				return err
			}

			refresh.NewGate().Run(ctx, app.refreshInterval(), func(ctx context.Context) {
				if err := show(ctx); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleRed.Render(err.Error()))
				}
			})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reprint on every refresh interval")
	return cmd
}

func newMonthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the month heat map and overtime balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			month := ""
			if len(args) == 1 {
				month = args[0]
			}
			view, err := app.Dashboard.Month(cmd.Context(), month)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMonth(view, app.lang()))
			return nil
		},
	}
}

func newWeekCmd(app *App) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the week's days with compliance flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			report, err := app.Dashboard.Week(cmd.Context(), start)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatWeek(report, app.lang()))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Any date in the week (YYYY-MM-DD)")
	return cmd
}

func newEventsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recently recorded clock events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			events, err := app.Events.ListClockEvents(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEvents(events, app.lang()))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events")
	return cmd
}

func (a *App) refreshInterval() time.Duration {
	if a.RefreshInterval > 0 {
		return a.RefreshInterval
	}
	return time.Minute
}
