package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbright/loop/internal/cli"
	"github.com/rbright/loop/internal/fsm"
	"github.com/rbright/loop/internal/ipc"
)

const forwardTimeout = 220 * time.Millisecond

// commandRemote forwards a command to the session that owns the socket.
func (r Runner) commandRemote(ctx context.Context, parsed cli.Parsed) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		if parsed.Command == cli.CommandStatus {
			fmt.Fprintln(r.Stdout, fsm.StateIdle)
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	req := ipc.Request{Command: string(parsed.Command), Text: parsed.Text}
	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		if parsed.Command == cli.CommandStatus {
			fmt.Fprintln(r.Stdout, fsm.StateIdle)
			return 0
		}
		fmt.Fprintln(r.Stderr, "error: no active loop session")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	if parsed.Command == cli.CommandStatus {
		r.printStatus(resp)
		return 0
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) printStatus(resp ipc.Response) {
	state := resp.State
	if state == "" {
		state = string(fsm.StateIdle)
	}
	fmt.Fprintln(r.Stdout, state)
	if state == string(fsm.StateError) && resp.Error != "" {
		fmt.Fprintln(r.Stdout, resp.Error)
	}
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if ipc.Unreachable(err) {
		return ipc.Response{}, false, nil
	}
	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}
