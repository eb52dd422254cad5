package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/rbright/loop/internal/fsm"
)

type keyMap struct {
	Primary key.Binding
	Newline key.Binding
	Record  key.Binding
	Escape  key.Binding
	Retry   key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Primary, k.Newline, k.Record, k.Escape, k.Retry, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Primary: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send/record/stop"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "newline"),
		),
		Record: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "record/stop"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/dismiss"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "retry"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// syncKeys enables only the bindings the current snapshot can act on.
func (m *Model) syncKeys() {
	m.keys.Primary.SetEnabled(!m.snap.IsBusy())
	m.keys.Newline.SetEnabled(m.editable())
	m.keys.Record.SetEnabled(!m.snap.IsBusy())
	m.keys.Escape.SetEnabled(m.snap.IsRecording() || m.snap.HasError())
	m.keys.Retry.SetEnabled(m.snap.HasError() && m.snap.LastOp != fsm.OpNone)
}
