// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and returned Cmds are run to completion before
// the next input. Cmds that block on timers or channels (spinner ticks,
// refresh intervals, subscription waits) do not return within the command
// timeout and are dropped, so a test only sees the messages its inputs
// produce.
package teatest

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained Cmds one input may trigger.
const MaxDrainDepth = 100

const defaultCmdTimeout = 10 * time.Millisecond

// Driver feeds messages to a tea.Model and keeps the latest model value.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a Cmd returned tea.QuitMsg.
	Quitting bool

	cmdTimeout time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout changes how long a Cmd may run before it is dropped.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.cmdTimeout = timeout }
}

// New creates a Driver. Call Start to run the model's Init.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: defaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start runs Init and drains what it produces.
func (d *Driver) Start() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send passes msg to Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd, 0)
}

// PressKey sends a single rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// PressCtrlC sends Ctrl+C.
func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

// View renders the current model.
func (d *Driver) View() string {
	return d.Model.View()
}

// ViewContains reports whether the rendered view contains s.
func (d *Driver) ViewContains(s string) bool {
	return strings.Contains(d.View(), s)
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg := d.run(cmd)
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
		d.Model, _ = d.Model.Update(msg)
	default:
		var next tea.Cmd
		d.Model, next = d.Model.Update(msg)
		d.drain(next, depth+1)
	}
}

func (d *Driver) run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.cmdTimeout):
		return nil
	}
}
