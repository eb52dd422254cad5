package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rbright/loop/internal/config"
	"github.com/rbright/loop/internal/entry"
	"github.com/rbright/loop/internal/fsm"
	"github.com/rbright/loop/internal/ipc"
)

var errSessionClosed = errors.New("session closed")

// lineMode submits each non-blank stdin line and prints the reply. It
// returns the number of failed submissions.
func (r Runner) lineMode(ctx context.Context, ctrl *entry.Controller) int {
	lines, readErr := readLines(ctx, r.stdin())
	failures := 0
	for {
		var line string
		select {
		case <-ctx.Done():
			return failures
		case next, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					fmt.Fprintf(r.Stderr, "error: read input: %v\n", err)
					failures++
				}
				return failures
			}
			line = next
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply, err := submitAndWait(ctx, ctrl, line)
		if err != nil {
			if ctx.Err() != nil {
				return failures
			}
			failures++
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			ctrl.Dispatch(entry.Dismiss{})
			continue
		}
		fmt.Fprintln(r.Stdout, reply)
	}
}

// readLines scans in the background so a blocked read never holds up shutdown.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()
	return lines, errCh
}

// commandSend submits text once on a session without a microphone.
func (r Runner) commandSend(ctx context.Context, cfg config.Config, text string, logger *slog.Logger) int {
	sess, _ := r.newSession(cfg, logger, false)
	defer sess.Close()

	reply, err := submitAndWait(ctx, sess.ctrl, text)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, reply)
	return 0
}

// submitAndWait replaces the buffer with text, submits it, and blocks until
// the submission settles.
func submitAndWait(ctx context.Context, ctrl *entry.Controller, text string) (string, error) {
	if resp := ctrl.Handle(ctx, ipc.Request{Command: ipc.CommandText, Text: text}); !resp.OK {
		return "", errors.New(resp.Error)
	}
	if resp := ctrl.Handle(ctx, ipc.Request{Command: ipc.CommandSubmit}); !resp.OK {
		return "", errors.New(resp.Error)
	}

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return "", errSessionClosed
			}
			switch snap.State {
			case fsm.StateSubmitting:
				continue
			case fsm.StateError:
				return "", errors.New(snap.ErrorMessage)
			default:
				return snap.Reply, nil
			}
		}
	}
}
