package cli

import (
	"fmt"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/spf13/cobra"
)

func newQueueCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and replay actions recorded while offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := app.Queue.Count(ctx)
			if err != nil {
				return err
			}
			line := app.lang().T(i18n.Pending, n)
			oldest, err := app.Queue.Oldest(ctx)
			if err != nil {
				return err
			}
			if n > 0 && !oldest.IsZero() {
				line += formatter.Dim(", oldest " + formatter.HumanTimestamp(oldest, app.now()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}

	cmd.AddCommand(
		newQueueListCmd(app),
		newQueueFlushCmd(app),
		newQueueDropCmd(app),
	)

	return cmd
}

func newQueueListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued actions, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := app.Queue.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatQueue(actions, app.lang(), app.now()))
			return nil
		},
	}
}

func newQueueFlushCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Send queued actions now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			res, err := app.Queue.Flush(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, app.lang().T(i18n.Flushed, res.Sent, res.Remaining))
			if res.StoppedBy != nil {
				fmt.Fprintln(out, formatter.StyleRed.Render(res.StoppedBy.Error()))
			}
			return nil
		},
	}
}

func newQueueDropCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "drop ID",
		Short: "Discard a queued action without sending it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Queue.Drop(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dropped %s\n", args[0])
			return nil
		},
	}
}
