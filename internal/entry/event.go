package entry

import "github.com/rbright/loop/internal/fsm"

// Event is one user intent dispatched into the controller.
type Event interface {
	Kind() fsm.Event
}

// TextChanged replaces the buffer with Value.
type TextChanged struct {
	Value string
}

// Record asks the controller to start capturing audio.
type Record struct{}

// StopRecording ends capture. Save=false discards the recording.
type StopRecording struct {
	Save bool
}

// CancelRecording discards the active recording.
type CancelRecording struct{}

// Submit sends the buffer to the submission service.
type Submit struct{}

// Retry re-invokes the operation that put the controller in error.
type Retry struct{}

// Dismiss clears the current error.
type Dismiss struct{}

func (TextChanged) Kind() fsm.Event     { return fsm.EventTextChanged }
func (Record) Kind() fsm.Event          { return fsm.EventRecord }
func (CancelRecording) Kind() fsm.Event { return fsm.EventCancelRecording }
func (Submit) Kind() fsm.Event          { return fsm.EventSubmit }
func (Retry) Kind() fsm.Event           { return fsm.EventRetry }
func (Dismiss) Kind() fsm.Event         { return fsm.EventDismiss }

func (e StopRecording) Kind() fsm.Event {
	if !e.Save {
		return fsm.EventCancelRecording
	}
	return fsm.EventStopRecording
}
