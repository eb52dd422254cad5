package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTypeSubmitHappyPath(t *testing.T) {
	s := StateIdle

	next, err := Transition(s, EventTextChanged, Guards{})
	require.NoError(t, err)
	require.Equal(t, StateTyping, next)

	next, err = Transition(next, EventSubmit, Guards{})
	require.NoError(t, err)
	require.Equal(t, StateSubmitting, next)

	next, err = Transition(next, EventSubmitResolved, Guards{BlankText: true})
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionRecordTranscribeHappyPath(t *testing.T) {
	next, err := Transition(StateIdle, EventRecord, Guards{BlankText: true})
	require.NoError(t, err)
	require.Equal(t, StateRecording, next)

	next, err = Transition(next, EventStopRecording, Guards{BlankText: true})
	require.NoError(t, err)
	require.Equal(t, StateTranscribing, next)

	next, err = Transition(next, EventTranscribeResolved, Guards{})
	require.NoError(t, err)
	require.Equal(t, StateTyping, next)
}

func TestTransitionBlankTextSettlesIdle(t *testing.T) {
	blank := Guards{BlankText: true}
	for _, tc := range []struct {
		state State
		event Event
	}{
		{StateIdle, EventTextChanged},
		{StateTyping, EventTextChanged},
		{StateRecording, EventTextChanged},
		{StateRecording, EventCancelRecording},
		{StateTranscribing, EventTranscribeResolved},
		{StateError, EventTextChanged},
		{StateError, EventDismiss},
	} {
		next, err := Transition(tc.state, tc.event, blank)
		require.NoError(t, err, "%s/%s", tc.state, tc.event)
		require.Equal(t, StateIdle, next, "%s/%s", tc.state, tc.event)

		next, err = Transition(tc.state, tc.event, Guards{})
		require.NoError(t, err)
		require.Equal(t, StateTyping, next, "%s/%s", tc.state, tc.event)
	}
}

func TestTransitionRetryRouting(t *testing.T) {
	tests := []struct {
		name   string
		guards Guards
		want   State
	}{
		{name: "submit with text", guards: Guards{LastOp: OpSubmit}, want: StateSubmitting},
		{name: "submit with blank text", guards: Guards{LastOp: OpSubmit, BlankText: true}, want: StateIdle},
		{name: "transcribe with payload", guards: Guards{LastOp: OpTranscribe, HasPayload: true, BlankText: true}, want: StateTranscribing},
		{name: "transcribe without payload", guards: Guards{LastOp: OpTranscribe}, want: StateIdle},
		{name: "no retryable op", guards: Guards{LastOp: OpNone, HasPayload: true}, want: StateIdle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(StateError, EventRetry, tc.guards)
			require.NoError(t, err)
			require.Equal(t, tc.want, next)
		})
	}
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event Event
	}{
		{name: "idle submit", state: StateIdle, event: EventSubmit},
		{name: "idle stop", state: StateIdle, event: EventStopRecording},
		{name: "idle retry", state: StateIdle, event: EventRetry},
		{name: "typing dismiss", state: StateTyping, event: EventDismiss},
		{name: "recording record", state: StateRecording, event: EventRecord},
		{name: "recording submit", state: StateRecording, event: EventSubmit},
		{name: "submitting record", state: StateSubmitting, event: EventRecord},
		{name: "submitting submit", state: StateSubmitting, event: EventSubmit},
		{name: "submitting text", state: StateSubmitting, event: EventTextChanged},
		{name: "transcribing record", state: StateTranscribing, event: EventRecord},
		{name: "transcribing submit", state: StateTranscribing, event: EventSubmit},
		{name: "transcribing cancel", state: StateTranscribing, event: EventCancelRecording},
		{name: "error record", state: StateError, event: EventRecord},
		{name: "error submit", state: StateError, event: EventSubmit},
		{name: "error submit resolved", state: StateError, event: EventSubmitResolved},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event, Guards{})
			require.Equal(t, tc.state, next)
			require.ErrorIs(t, err, ErrInvalidTransition)
			require.Contains(t, err.Error(), "invalid transition")
		})
	}
}

func TestTransitionTypingSubmitGuard(t *testing.T) {
	next, err := Transition(StateTyping, EventSubmit, Guards{BlankText: true})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Contains(t, err.Error(), "buffer is blank")
	require.Equal(t, StateTyping, next)
}

func TestTransitionFailuresGoError(t *testing.T) {
	for _, tc := range []struct {
		state State
		event Event
	}{
		{StateRecording, EventDeviceFailed},
		{StateSubmitting, EventSubmitRejected},
		{StateTranscribing, EventTranscribeRejected},
	} {
		next, err := Transition(tc.state, tc.event, Guards{})
		require.NoError(t, err)
		require.Equal(t, StateError, next)
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventRecord, Guards{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}

var allStates = []State{StateIdle, StateTyping, StateRecording, StateSubmitting, StateTranscribing, StateError}

func TestBusy(t *testing.T) {
	for _, state := range allStates {
		want := state == StateSubmitting || state == StateTranscribing
		require.Equal(t, want, Busy(state), string(state))
	}
}
