package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/spf13/cobra"
)

func newNoteCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "note",
		Short: "Read or write the note for a day",
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), default today")

	day := func() string {
		if date != "" {
			return date
		}
		return app.today()
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			note, err := app.Notes.Get(cmd.Context(), day())
			if err != nil {
				return err
			}
			if note == nil {
				fmt.Fprintln(cmd.OutOrStdout(), app.lang().T(i18n.NoNote, day()))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), note.Content)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set TEXT...",
		Short: "Replace the note; empty text deletes it",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			note, err := app.Notes.Save(cmd.Context(), day(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if note == nil {
				fmt.Fprintln(cmd.OutOrStdout(), app.lang().T(i18n.NoteDeleted))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.lang().T(i18n.NoteSaved))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete the note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			if err := app.Notes.Delete(cmd.Context(), day()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.lang().T(i18n.NoteDeleted))
			return nil
		},
	}

	cmd.AddCommand(get, set, del)
	return cmd
}
