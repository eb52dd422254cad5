package fsm

import (
	"errors"
	"fmt"
)

type State string

type Event string

// Op names the async operation an error state can retry.
type Op string

const (
	StateIdle         State = "idle"
	StateTyping       State = "typing"
	StateRecording    State = "recording"
	StateSubmitting   State = "submitting"
	StateTranscribing State = "transcribing"
	StateError        State = "error"
)

const (
	EventTextChanged     Event = "text_changed"
	EventRecord          Event = "record"
	EventStopRecording   Event = "stop_recording"
	EventCancelRecording Event = "cancel_recording"
	EventSubmit          Event = "submit"
	EventRetry           Event = "retry"
	EventDismiss         Event = "dismiss"

	EventDeviceFailed       Event = "device_failed"
	EventSubmitResolved     Event = "submit_resolved"
	EventSubmitRejected     Event = "submit_rejected"
	EventTranscribeResolved Event = "transcribe_resolved"
	EventTranscribeRejected Event = "transcribe_rejected"
)

const (
	OpNone       Op = ""
	OpSubmit     Op = "submit"
	OpTranscribe Op = "transcribe"
)

// ErrInvalidTransition marks an event the current state does not handle.
var ErrInvalidTransition = errors.New("invalid transition")

// Guards are the buffer facts a transition may consult. BlankText describes
// the buffer as it will be once the event's own assignment has been applied.
type Guards struct {
	BlankText  bool
	LastOp     Op
	HasPayload bool
}

// Busy reports whether an async operation is outstanding in state.
func Busy(state State) bool {
	return state == StateSubmitting || state == StateTranscribing
}

func Transition(current State, event Event, g Guards) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventTextChanged:
			return settle(g), nil
		case EventRecord:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTyping:
		switch event {
		case EventTextChanged:
			return settle(g), nil
		case EventSubmit:
			if g.BlankText {
				return current, guardRejected(current, event, "buffer is blank")
			}
			return StateSubmitting, nil
		case EventRecord:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventStopRecording:
			return StateTranscribing, nil
		case EventCancelRecording, EventTextChanged:
			return settle(g), nil
		case EventDeviceFailed:
			return StateError, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSubmitting:
		switch event {
		case EventSubmitResolved:
			return StateIdle, nil
		case EventSubmitRejected:
			return StateError, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscribing:
		switch event {
		case EventTranscribeResolved:
			return settle(g), nil
		case EventTranscribeRejected:
			return StateError, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateError:
		switch event {
		case EventRetry:
			switch {
			case g.LastOp == OpSubmit && !g.BlankText:
				return StateSubmitting, nil
			case g.LastOp == OpTranscribe && g.HasPayload:
				return StateTranscribing, nil
			default:
				return StateIdle, nil
			}
		case EventDismiss, EventTextChanged:
			return settle(g), nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// settle picks the resting state for the current buffer.
func settle(g Guards) State {
	if g.BlankText {
		return StateIdle
	}
	return StateTyping
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("%w: %s --(%s)--> ?", ErrInvalidTransition, state, event)
}

func guardRejected(state State, event Event, reason string) error {
	return fmt.Errorf("%w: %s --(%s)--> ? (%s)", ErrInvalidTransition, state, event, reason)
}
