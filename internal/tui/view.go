package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rbright/loop/internal/entry"
	"github.com/rbright/loop/internal/fsm"
)

const meterWidth = 24

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		titleStyle.Render("loop") + " " + stateStyle.Render(string(m.snap.State)),
		m.input.View(),
		lipgloss.JoinHorizontal(lipgloss.Center, m.primaryButton(), "  ", m.status()),
	}
	if m.snap.HasError() {
		sections = append(sections, m.errorView())
	}
	if reply := strings.TrimSpace(m.snap.Reply); reply != "" {
		style := replyStyle
		if m.width > 4 {
			style = style.Width(m.width - 4)
		}
		sections = append(sections, style.Render(reply))
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n") + "\n"
}

func (m *Model) primaryButton() string {
	switch m.snap.Mode() {
	case entry.ModeBusy:
		return busyButtonStyle.Render(m.spinner.View() + " Working")
	case entry.ModeStop:
		return stopButtonStyle.Render("■ Stop")
	case entry.ModeSubmit:
		return buttonStyle.Render("Send ↵")
	default:
		return buttonStyle.Render("● Record")
	}
}

func (m *Model) status() string {
	switch m.snap.State {
	case fsm.StateRecording:
		return recStyle.Render("REC") + " " + volumeMeter(m.snap.Volume, meterWidth)
	case fsm.StateSubmitting:
		return hintStyle.Render("Sending…")
	case fsm.StateTranscribing:
		label := "Transcribing…"
		if m.snap.Audio != nil && m.snap.Audio.Duration > 0 {
			label = fmt.Sprintf("Transcribing %.1fs of audio…", m.snap.Audio.Duration.Seconds())
		}
		return hintStyle.Render(label)
	default:
		return ""
	}
}

func (m *Model) errorView() string {
	hints := []string{"ctrl+t retry", "esc dismiss"}
	if m.snap.LastOp == fsm.OpNone {
		hints = hints[1:]
	}
	return errorStyle.Render(m.snap.ErrorMessage) + "\n" + hintStyle.Render(strings.Join(hints, " · "))
}

// volumeMeter draws level in [0,1] as a bar of width cells.
func volumeMeter(level float64, width int) string {
	if math.IsNaN(level) || level < 0 {
		level = 0
	}
	filled := int(math.Round(math.Min(level, 1) * float64(width)))
	return meterOnStyle.Render(strings.Repeat("█", filled)) +
		meterOffStyle.Render(strings.Repeat("░", width-filled))
}
