package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the entry widget until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl Controller, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(NewModel(ctrl),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
