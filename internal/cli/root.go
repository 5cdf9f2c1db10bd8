package cli

import (
	"time"

	"github.com/alexanderramin/punchclock/internal/capability"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/alexanderramin/punchclock/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to the services and ports used by CLI commands.
type App struct {
	Session   SessionPort
	Queue     QueuePort
	Events    EventLister
	Clock     service.ClockService
	Dashboard service.DashboardService
	Notes     service.NoteService

	// Locator provides positions for arrivals recorded with --geo.
	Locator    capability.Locator
	GeoTimeout time.Duration

	// Online reports whether the backend is reachable. Nil means assume it is.
	Online OnlineChecker
	// Monitor feeds connectivity transitions to the dashboard. Optional.
	Monitor OnlineSignaller

	RefreshInterval time.Duration
	Lang            i18n.Lang

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
	// Now is the clock used for "today"; nil means time.Now.
	Now func() time.Time
}

// NewRootCmd creates the top-level "punch" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "punch",
		Short:         "Offline-first time clock",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newClockCmd(app),
		newQueueCmd(app),
		newTodayCmd(app),
		newMonthCmd(app),
		newWeekCmd(app),
		newEventsCmd(app),
		newNoteCmd(app),
		newDashboardCmd(app),
	)

	return root
}
