package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const minPasswordLen = 8

var errMissingCredentials = errors.New("email and password are required (use --email and --password-stdin)")

// punchHuhTheme returns the huh theme matching the formatter palette.
func punchHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validateEmail(s string) error {
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

func validatePassword(minLen int) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("password is required")
		}
		if len(s) < minLen {
			return fmt.Errorf("use at least %d characters", minLen)
		}
		return nil
	}
}

// credentialsForm asks for whichever of email and password is missing.
func credentialsForm(lang i18n.Lang, title string, register bool, email, password *string) *huh.Form {
	minLen := 1
	pwTitle := lang.T(i18n.Password)
	if register {
		minLen = minPasswordLen
		pwTitle = lang.T(i18n.PasswordMin)
	}

	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title(lang.T(i18n.Email)).
			Placeholder("you@example.com").
			Value(email).
			Validate(validateEmail))
	}
	fields = append(fields, huh.NewInput().
		Title(pwTitle).
		EchoMode(huh.EchoModePassword).
		Value(password).
		Validate(validatePassword(minLen)))

	return huh.NewForm(
		huh.NewGroup(fields...).Title(title),
	).WithTheme(punchHuhTheme()).WithShowHelp(false)
}

// readPassword reads the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
