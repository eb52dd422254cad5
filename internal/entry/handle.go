package entry

import (
	"context"
	"fmt"

	"github.com/rbright/loop/internal/ipc"
)

// EventForCommand maps an IPC command to the event it dispatches.
func EventForCommand(req ipc.Request, current Snapshot) (Event, error) {
	switch req.Command {
	case ipc.CommandText:
		return TextChanged{Value: req.Text}, nil
	case ipc.CommandRecord:
		return Record{}, nil
	case ipc.CommandStop:
		return StopRecording{Save: true}, nil
	case ipc.CommandCancel:
		return CancelRecording{}, nil
	case ipc.CommandSubmit:
		return Submit{}, nil
	case ipc.CommandRetry:
		return Retry{}, nil
	case ipc.CommandDismiss:
		return Dismiss{}, nil
	case ipc.CommandToggle:
		if ev := current.PrimaryAction(); ev != nil {
			return ev, nil
		}
		return nil, fmt.Errorf("cannot toggle from state %s", current.State)
	default:
		return nil, fmt.Errorf("unknown command: %s", req.Command)
	}
}

// Handle serves IPC commands against the running entry widget.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	if req.Command == ipc.CommandStatus {
		return statusResponse(c.State(), "status")
	}

	before := c.State()
	ev, err := EventForCommand(req, before)
	if err != nil {
		return ipc.Response{OK: false, State: string(before.State), Error: err.Error()}
	}

	if !c.apply(ev) {
		after := c.State()
		return ipc.Response{
			OK:    false,
			State: string(after.State),
			Error: fmt.Sprintf("cannot %s from state %s", req.Command, after.State),
		}
	}
	return statusResponse(c.State(), req.Command+" applied")
}

func statusResponse(s Snapshot, message string) ipc.Response {
	resp := ipc.Response{
		OK:      true,
		State:   string(s.State),
		Message: message,
		Text:    s.Text,
		Reply:   s.Reply,
	}
	if s.HasError() {
		resp.Error = s.ErrorMessage
		resp.LastOp = string(s.LastOp)
	}
	return resp
}
