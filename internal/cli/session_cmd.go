package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/spf13/cobra"
)

type authFunc func(ctx context.Context, email, password string) (*domain.Identity, error)

func newLoginCmd(app *App) *cobra.Command {
	return newAuthCmd(app, "login", "Sign in", false, func(ctx context.Context, email, pw string) (*domain.Identity, error) {
		return app.Session.Login(ctx, email, pw)
	})
}

func newRegisterCmd(app *App) *cobra.Command {
	return newAuthCmd(app, "register", "Create an account and sign in", true, func(ctx context.Context, email, pw string) (*domain.Identity, error) {
		return app.Session.Register(ctx, email, pw)
	})
}

func newAuthCmd(app *App, use, short string, register bool, auth authFunc) *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lang := app.lang()

			// Surface an expiry message left by a previous command.
			if flash, err := app.Session.TakeFlash(ctx); err == nil && flash != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleYellow.Render(flash))
			}

			var password string
			if passwordStdin {
				pw, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = pw
			}

			if email == "" || password == "" {
				if !app.interactive() {
					return errMissingCredentials
				}
				title := lang.T(i18n.LoginTitle)
				if register {
					title = lang.T(i18n.RegisterTitle)
				}
				if err := credentialsForm(lang, title, register, &email, &password).Run(); err != nil {
					return err
				}
			}
			if err := validateEmail(email); err != nil {
				return err
			}
			if register {
				if err := validatePassword(minPasswordLen)(password); err != nil {
					return err
				}
			}

			id, err := auth(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render(lang.T(i18n.SignedInAs, id.Email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the cached identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.lang().T(i18n.SignedOut))
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSignedIn(cmd, app); err != nil {
				return err
			}
			lang := app.lang()
			st := app.Session.State()
			out := cmd.OutOrStdout()

			line := lang.T(i18n.SignedInAs, st.Identity.Email)
			if !st.Verified {
				line += " " + formatter.StyleYellow.Render("("+lang.T(i18n.Unverified)+")")
			}
			fmt.Fprintln(out, line)
			if st.Identity.Timezone != "" {
				fmt.Fprintln(out, formatter.Dim("timezone: "+st.Identity.Timezone))
			}
			if exp, ok := app.Session.TokenExpiry(); ok {
				fmt.Fprintln(out, formatter.Dim("access token expires: "+exp.Local().Format(time.DateTime)))
			}
			return nil
		},
	}
}
