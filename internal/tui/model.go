// Package tui renders the entry widget in a terminal.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rbright/loop/internal/entry"
)

// Controller is the slice of the entry controller the view drives.
type Controller interface {
	State() entry.Snapshot
	Dispatch(entry.Event)
	Subscribe() (<-chan entry.Snapshot, func())
}

const (
	placeholderIdle      = "Type a command…"
	placeholderRecording = "Listening…"
	placeholderBusy      = "Working…"
	minInputWidth        = 20
)

type snapshotMsg entry.Snapshot

type updatesClosedMsg struct{}

// Model is the bubbletea model for one entry widget. Everything it renders
// comes from controller snapshots; the textarea only mirrors the buffer.
type Model struct {
	ctrl        Controller
	updates     <-chan entry.Snapshot
	unsubscribe func()

	snap     entry.Snapshot
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	width    int
	quitting bool
}

func NewModel(ctrl Controller) *Model {
	input := textarea.New()
	input.Placeholder = placeholderIdle
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(3)
	input.KeyMap.InsertNewline.SetEnabled(false)

	updates, unsubscribe := ctrl.Subscribe()
	m := &Model{
		ctrl:        ctrl,
		updates:     updates,
		unsubscribe: unsubscribe,
		input:       input,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:        help.New(),
		keys:        defaultKeyMap(),
	}
	m.apply(ctrl.State())
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.updates), textarea.Blink, m.spinner.Tick)
}

func waitForSnapshot(updates <-chan entry.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.apply(entry.Snapshot(msg))
		return m, waitForSnapshot(m.updates)
	case updatesClosedMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(minInputWidth, msg.Width-2))
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.unsubscribe()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Newline):
		m.input.InsertString("\n")
		m.dispatch(entry.TextChanged{Value: m.input.Value()})
		return m, nil
	case key.Matches(msg, m.keys.Primary):
		if action := m.snap.PrimaryAction(); action != nil {
			m.dispatch(action)
		}
		return m, nil
	case key.Matches(msg, m.keys.Record):
		if m.snap.IsRecording() {
			m.dispatch(entry.StopRecording{Save: true})
		} else {
			m.dispatch(entry.Record{})
		}
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		if m.snap.IsRecording() {
			m.dispatch(entry.CancelRecording{})
		} else {
			m.dispatch(entry.Dismiss{})
		}
		return m, nil
	case key.Matches(msg, m.keys.Retry):
		m.dispatch(entry.Retry{})
		return m, nil
	}

	if !m.editable() {
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.dispatch(entry.TextChanged{Value: after})
	}
	return m, cmd
}

// dispatch runs the event on the update goroutine so edits and submits keep
// their order, then renders the resulting snapshot without waiting for the
// subscription.
func (m *Model) dispatch(ev entry.Event) {
	m.ctrl.Dispatch(ev)
	m.apply(m.ctrl.State())
}

func (m *Model) editable() bool {
	return !m.snap.IsBusy() && !m.snap.IsRecording()
}

func (m *Model) apply(snap entry.Snapshot) {
	m.snap = snap
	if m.input.Value() != snap.Text {
		m.input.SetValue(snap.Text)
	}

	switch {
	case snap.IsRecording():
		m.input.Placeholder = placeholderRecording
	case snap.IsBusy():
		m.input.Placeholder = placeholderBusy
	default:
		m.input.Placeholder = placeholderIdle
	}
	if m.editable() {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.syncKeys()
}

// Snapshot returns the snapshot the view last rendered.
func (m *Model) Snapshot() entry.Snapshot {
	return m.snap
}
