package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexanderramin/punchclock/internal/api"
	"github.com/alexanderramin/punchclock/internal/capability"
	"github.com/alexanderramin/punchclock/internal/cli"
	"github.com/alexanderramin/punchclock/internal/config"
	"github.com/alexanderramin/punchclock/internal/db"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/alexanderramin/punchclock/internal/netwatch"
	"github.com/alexanderramin/punchclock/internal/observability"
	"github.com/alexanderramin/punchclock/internal/queue"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/service"
	"github.com/alexanderramin/punchclock/internal/session"
	"github.com/alexanderramin/punchclock/internal/transport"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()
	lang := i18n.Detect(cfg.Lang, os.Getenv("LANG"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Observers
	var useCaseObs observability.UseCaseObserver = observability.NoopUseCaseObserver{}
	var callObs observability.CallObserver = observability.NoopCallObserver{}
	if cfg.LogCalls {
		useCaseObs = observability.NewLogUseCaseObserver(os.Stderr)
		callObs = observability.NewLogCallObserver(os.Stderr)
	}

	// Local storage
	uow := db.NewSQLiteUnitOfWork(database)
	actions := repository.NewSQLiteActionRepo(database)
	identities := repository.NewSQLiteIdentityRepo(database)
	jar, err := transport.NewPersistentJar(ctx, repository.NewSQLiteCookieRepo(database, uow), func(err error) {
		useCaseObs.ObserveUseCase(ctx, observability.UseCaseEvent{Name: "cookies.persist", Err: err, StartedAt: time.Now()})
	})
	if err != nil {
		return fmt.Errorf("loading cookies: %w", err)
	}

	// Backend access
	httpClient := &http.Client{Jar: jar, Timeout: cfg.RequestTimeout()}
	tc := transport.NewClient(cfg.APIBaseURL, httpClient, callObs)
	sessions := session.NewManager(tc, identities, session.Options{
		RefreshTimeout: cfg.RefreshTimeout(),
		ExpiredMessage: lang.T(i18n.SessionExpired),
		Observer:       useCaseObs,
	})
	client := api.New(sessions)
	q := queue.NewManager(actions, client, queue.WithObserver(useCaseObs))

	// Connectivity
	addr, err := netwatch.AddrFromURL(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	monitor := netwatch.NewMonitor(netwatch.TCPProber{Addr: addr, Timeout: cfg.RequestTimeout()}, cfg.ProbeInterval())
	flushSignals, sessionSignals := monitor.Subscribe(), monitor.Subscribe()
	go monitor.Run(ctx)
	go q.RunAutoFlush(ctx, flushSignals)
	go sessions.WatchOnline(ctx, sessionSignals)

	app := &cli.App{
		Session:   sessions,
		Queue:     q,
		Events:    client,
		Clock:     service.NewClockService(client, q, useCaseObs),
		Dashboard: service.NewDashboardService(client, q, useCaseObs),
		Notes:     service.NewNoteService(client, useCaseObs),

		Locator:    locator(cfg.GeoCommand),
		GeoTimeout: cfg.GeoTimeout(),

		Online:  monitor,
		Monitor: monitor,

		RefreshInterval: cfg.DashboardRefresh(),
		Lang:            lang,
	}

	// Detect interactive terminal for prompts and the live dashboard.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

func locator(command string) capability.Locator {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return capability.NoLocator{}
	}
	return capability.CommandLocator{Name: fields[0], Args: fields[1:]}
}
