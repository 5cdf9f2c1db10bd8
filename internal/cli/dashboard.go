package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/punchclock/internal/accounting"
	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/alexanderramin/punchclock/internal/queue"
	"github.com/alexanderramin/punchclock/internal/refresh"
	"github.com/alexanderramin/punchclock/internal/service"
	"github.com/alexanderramin/punchclock/internal/transport"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dashboardKeys struct {
	ArriveOffice key.Binding
	ArriveHome   key.Binding
	Depart       key.Binding
	BreakStart   key.Binding
	BreakEnd     key.Binding
	Sync         key.Binding
	Reload       key.Binding
	Quit         key.Binding
}

func newDashboardKeys(lang i18n.Lang) dashboardKeys {
	return dashboardKeys{
		ArriveOffice: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", lang.T(i18n.ArriveOffice))),
		ArriveHome:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", lang.T(i18n.ArriveHome))),
		Depart:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", lang.T(i18n.Depart))),
		BreakStart:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", lang.T(i18n.BreakStart))),
		BreakEnd:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", lang.T(i18n.BreakEnd))),
		Sync:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", lang.T(i18n.Sync))),
		Reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// bindings returns the hints for the actions the gate currently allows,
// followed by the always available ones.
func (k dashboardKeys) bindings(g accounting.ActionGate) []key.Binding {
	var out []key.Binding
	if g.CanArrive {
		out = append(out, k.ArriveOffice, k.ArriveHome)
	}
	if g.CanBreakStart {
		out = append(out, k.BreakStart)
	}
	if g.CanBreakEnd {
		out = append(out, k.BreakEnd)
	}
	if g.CanDepart {
		out = append(out, k.Depart)
	}
	return append(out, k.Sync, k.Reload, k.Quit)
}

type dashboardLoadedMsg struct {
	view *service.MonthView
	err  error
}

type dashboardTickMsg time.Time

type pendingChangedMsg int

type backendOnlineMsg struct{}

type clockRecordedMsg struct {
	kind domain.ClockKind
	loc  *domain.WorkLocation
	res  *service.RecordResult
	err  error
}

type queueFlushedMsg struct {
	res queue.FlushResult
	err error
}

// dashboardModel is the live view: today's status and actions, the month
// heat map and the queue size. It reloads on an interval while the
// terminal has focus and immediately when focus returns.
type dashboardModel struct {
	app  *App
	ctx  context.Context
	gate *refresh.Gate
	keys dashboardKeys
	help help.Model
	spin spinner.Model

	pendingCh <-chan int
	onlineCh  <-chan struct{}

	view    *service.MonthView
	pending int
	loading bool
	offline bool
	notice  string
}

func newDashboardModel(ctx context.Context, app *App, pendingCh <-chan int) dashboardModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(formatter.ColorBlue)

	m := dashboardModel{
		app:       app,
		ctx:       ctx,
		gate:      refresh.NewGate(),
		keys:      newDashboardKeys(app.lang()),
		help:      help.New(),
		spin:      sp,
		pendingCh: pendingCh,
		loading:   true,
	}
	if app.Monitor != nil {
		m.onlineCh = app.Monitor.Subscribe()
	}
	return m
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.load(),
		m.scheduleTick(),
		m.waitPending(),
		m.waitOnline(),
		m.spin.Tick,
	)
}

func (m dashboardModel) load() tea.Cmd {
	dash, ctx := m.app.Dashboard, m.ctx
	return func() tea.Msg {
		view, err := dash.Month(ctx, "")
		return dashboardLoadedMsg{view: view, err: err}
	}
}

func (m dashboardModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.app.refreshInterval(), func(t time.Time) tea.Msg {
		return dashboardTickMsg(t)
	})
}

func (m dashboardModel) waitPending() tea.Cmd {
	if m.pendingCh == nil {
		return nil
	}
	ch := m.pendingCh
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return pendingChangedMsg(n)
	}
}

func (m dashboardModel) waitOnline() tea.Cmd {
	if m.onlineCh == nil {
		return nil
	}
	ch := m.onlineCh
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return backendOnlineMsg{}
	}
}

func (m dashboardModel) record(kind domain.ClockKind, loc *domain.WorkLocation) tea.Cmd {
	clock, ctx := m.app.Clock, m.ctx
	return func() tea.Msg {
		res, err := clock.Record(ctx, domain.ClockEvent{Kind: kind, Location: loc})
		return clockRecordedMsg{kind: kind, loc: loc, res: res, err: err}
	}
}

func (m dashboardModel) flush() tea.Cmd {
	q, ctx := m.app.Queue, m.ctx
	return func() tea.Msg {
		res, err := q.Flush(ctx)
		return queueFlushedMsg{res: res, err: err}
	}
}

func (m dashboardModel) currentGate() accounting.ActionGate {
	return gateOf(m.view)
}

// gateOf allows nothing until a status has been loaded.
func gateOf(view *service.MonthView) accounting.ActionGate {
	if view == nil {
		return accounting.ActionGate{}
	}
	return accounting.Gate(view.Status)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	lang := m.app.lang()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.FocusMsg:
		if m.gate.SetVisible(true) {
			m.loading = true
			return m, m.load()
		}
		return m, nil

	case tea.BlurMsg:
		m.gate.SetVisible(false)
		return m, nil

	case dashboardTickMsg:
		if m.gate.OnTick() {
			m.loading = true
			return m, tea.Batch(m.load(), m.scheduleTick())
		}
		return m, m.scheduleTick()

	case dashboardLoadedMsg:
		m.loading = false
		switch {
		case msg.err == nil:
			m.view = msg.view
			m.offline = false
		case errors.Is(msg.err, transport.ErrNetworkUnreachable):
			m.offline = true
		default:
			m.notice = formatter.StyleRed.Render(msg.err.Error())
		}
		return m, nil

	case pendingChangedMsg:
		m.pending = int(msg)
		return m, m.waitPending()

	case backendOnlineMsg:
		m.offline = false
		m.loading = true
		return m, tea.Batch(m.load(), m.waitOnline())

	case clockRecordedMsg:
		switch {
		case msg.err != nil:
			m.notice = formatter.StyleRed.Render(msg.err.Error())
			return m, nil
		case msg.res.WasQueued():
			m.offline = true
			m.notice = formatter.StyleYellow.Render(lang.T(i18n.OfflineQueued))
			return m, nil
		}
		m.notice = formatter.StyleGreen.Render(lang.T(i18n.Recorded, formatter.KindLabel(lang, msg.kind, msg.loc)))
		m.loading = true
		return m, m.load()

	case queueFlushedMsg:
		if msg.err != nil {
			m.notice = formatter.StyleRed.Render(msg.err.Error())
			return m, nil
		}
		m.notice = lang.T(i18n.Flushed, msg.res.Sent, msg.res.Remaining)
		if msg.res.StoppedBy != nil {
			m.notice += "  " + formatter.StyleRed.Render(msg.res.StoppedBy.Error())
		}
		m.loading = true
		return m, m.load()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.currentGate()
	office, home := domain.LocationOffice, domain.LocationHome

	var allowed bool
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.load()
	case key.Matches(msg, m.keys.Sync):
		return m, m.flush()
	case key.Matches(msg, m.keys.ArriveOffice):
		allowed, cmd = g.CanArrive, m.record(domain.ClockArrive, &office)
	case key.Matches(msg, m.keys.ArriveHome):
		allowed, cmd = g.CanArrive, m.record(domain.ClockArrive, &home)
	case key.Matches(msg, m.keys.Depart):
		allowed, cmd = g.CanDepart, m.record(domain.ClockDepart, nil)
	case key.Matches(msg, m.keys.BreakStart):
		allowed, cmd = g.CanBreakStart, m.record(domain.ClockBreakStart, nil)
	case key.Matches(msg, m.keys.BreakEnd):
		allowed, cmd = g.CanBreakEnd, m.record(domain.ClockBreakEnd, nil)
	default:
		return m, nil
	}

	// Offline the last known gate may be stale; the backend decides on replay.
	if !allowed && !m.offline {
		m.notice = formatter.StyleYellow.Render(m.app.lang().T(i18n.NotAllowed))
		return m, nil
	}
	m.notice = ""
	return m, cmd
}

func (m dashboardModel) View() string {
	lang := m.app.lang()
	var sections []string

	title := formatter.StylePurple.Render("punch")
	if m.loading {
		title += " " + m.spin.View()
	}
	sections = append(sections, title)

	if m.offline {
		sections = append(sections, formatter.StyleYellow.Render(lang.T(i18n.OfflineBanner)))
	}

	if m.view != nil {
		today := &service.TodayView{Status: m.view.Status, Gate: m.currentGate(), Pending: m.pending}
		sections = append(sections,
			formatter.FormatToday(today, lang),
			formatter.FormatMonth(m.view, lang))
	} else if m.pending > 0 {
		sections = append(sections, formatter.StyleYellow.Render(lang.T(i18n.Pending, m.pending)))
	}

	if m.notice != "" {
		sections = append(sections, m.notice)
	}
	sections = append(sections, m.help.ShortHelpView(m.keys.bindings(m.currentGate())))

	return strings.Join(sections, "\n\n") + "\n"
}

// coalescingChannel adapts a queue subscription callback to a channel that
// only ever holds the latest count.
func coalescingChannel() (chan int, func(int)) {
	ch := make(chan int, 1)
	return ch, func(n int) {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- n:
		default:
		}
	}
}

func describeDashboardErr(lang i18n.Lang, err error) string {
	if errors.Is(err, transport.ErrNetworkUnreachable) {
		return lang.T(i18n.OfflineBanner)
	}
	return fmt.Sprintf("%s: %v", lang.T(i18n.Generic), err)
}
