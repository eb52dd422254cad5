// Package output applies reply side effects outside the entry view.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"

	"github.com/rbright/loop/internal/entry"
)

const clipboardTimeout = 2 * time.Second

// ErrClipboardUnavailable is returned when no clipboard utility is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Committer copies successful replies to the system clipboard.
type Committer struct {
	write  func(string) error
	logger *slog.Logger
}

var _ entry.Committer = (*Committer)(nil)

// NewCommitter constructs a clipboard committer.
func NewCommitter(logger *slog.Logger) *Committer {
	return newCommitter(clipboard.WriteAll, logger)
}

func newCommitter(write func(string) error, logger *slog.Logger) *Committer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Committer{write: write, logger: logger}
}

// Commit writes reply text to the clipboard. Blank replies are ignored.
func (c *Committer) Commit(ctx context.Context, reply string) error {
	if reply == "" {
		return nil
	}
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.write(reply) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("set clipboard: %w", err)
		}
		c.logger.Debug("reply copied to clipboard", "chars", len(reply))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("set clipboard: %w", ctx.Err())
	}
}
