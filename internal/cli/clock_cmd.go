package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/punchclock/internal/capability"
	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/alexanderramin/punchclock/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// locationFlag is a pflag.Value accepting "office" or "home".
type locationFlag struct {
	loc domain.WorkLocation
}

var _ pflag.Value = (*locationFlag)(nil)

func (f *locationFlag) String() string { return strings.ToLower(string(f.loc)) }
func (f *locationFlag) Type() string   { return "office|home" }

func (f *locationFlag) Set(s string) error {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(domain.LocationOffice):
		f.loc = domain.LocationOffice
	case string(domain.LocationHome):
		f.loc = domain.LocationHome
	default:
		return fmt.Errorf("%w: %q (use office or home)", domain.ErrInvalidLocation, s)
	}
	return nil
}

func newClockCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Record arrivals, departures and breaks",
	}

	cmd.AddCommand(
		newArriveCmd(app),
		newSimpleClockCmd(app, "depart", "Leave for the day", domain.NewDepart),
		newSimpleClockCmd(app, "break-start", "Start a break", domain.NewBreakStart),
		newSimpleClockCmd(app, "break-end", "End a break", domain.NewBreakEnd),
	)

	return cmd
}

func newArriveCmd(app *App) *cobra.Command {
	loc := &locationFlag{loc: domain.LocationOffice}
	var useGeo, force bool
	var lat, lng, accuracy float64

	cmd := &cobra.Command{
		Use:   "arrive",
		Short: "Start the working day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var geo *domain.Geo
			switch {
			case cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng"):
				if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
					return fmt.Errorf("%w: --lat and --lng go together", domain.ErrInvalidGeo)
				}
				geo = &domain.Geo{Lat: lat, Lng: lng}
				if cmd.Flags().Changed("accuracy") {
					geo.AccuracyM = &accuracy
				}
			case useGeo:
				g, err := locate(cmd, app)
				if err != nil {
					return err
				}
				geo = g
			}

			ev, err := domain.NewArrive(loc.loc, geo)
			if err != nil {
				return err
			}
			return recordClock(cmd, app, ev, force)
		},
	}

	cmd.Flags().Var(loc, "location", "Where you work today (office|home)")
	cmd.Flags().BoolVar(&useGeo, "geo", false, "Attach the current position")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude to attach")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude to attach")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 0, "Position accuracy in meters")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the state check")
	cmd.MarkFlagsMutuallyExclusive("geo", "lat")

	return cmd
}

func newSimpleClockCmd(app *App, use, short string, build func() domain.ClockEvent) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return recordClock(cmd, app, build(), force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Skip the state check")
	return cmd
}

func locate(cmd *cobra.Command, app *App) (*domain.Geo, error) {
	locator := app.Locator
	if locator == nil {
		locator = capability.NoLocator{}
	}
	if app.interactive() {
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), "locating")
		defer stop()
	}
	return capability.LocateWithin(cmd.Context(), locator, app.GeoTimeout)
}

// recordClock sends ev, falling back to the offline queue when the
// backend cannot be reached.
func recordClock(cmd *cobra.Command, app *App, ev domain.ClockEvent, force bool) error {
	ctx := cmd.Context()
	lang := app.lang()
	if err := ensureSignedIn(cmd, app); err != nil {
		return err
	}
	flushPending(ctx, cmd, app)

	if !force {
		if err := app.Clock.Check(ctx, ev.Kind); err != nil {
			if errors.Is(err, service.ErrActionNotAllowed) {
				return &localizedError{msg: lang.T(i18n.NotAllowed), err: err}
			}
			return err
		}
	}

	res, err := app.Clock.Record(ctx, ev)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.WasQueued() {
		fmt.Fprintln(out, formatter.StyleYellow.Render(lang.T(i18n.OfflineQueued)))
		return nil
	}
	fmt.Fprintln(out, formatter.StyleGreen.Render(lang.T(i18n.Recorded, formatter.KindLabel(lang, ev.Kind, ev.Location))))
	return nil
}
