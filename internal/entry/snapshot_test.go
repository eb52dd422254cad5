package entry

import (
	"testing"

	"github.com/rbright/loop/internal/fsm"
	"github.com/stretchr/testify/require"
)

func TestSnapshotModePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		snap   Snapshot
		mode   Mode
		action Event
	}{
		{name: "idle records", snap: Snapshot{State: fsm.StateIdle}, mode: ModeRecord, action: Record{}},
		{name: "typing submits", snap: Snapshot{State: fsm.StateTyping, Text: "hi"}, mode: ModeSubmit, action: Submit{}},
		{name: "typing blank records", snap: Snapshot{State: fsm.StateTyping, Text: "\t"}, mode: ModeRecord, action: Record{}},
		{name: "recording stops", snap: Snapshot{State: fsm.StateRecording, Text: "hi"}, mode: ModeStop, action: StopRecording{Save: true}},
		{name: "submitting busy", snap: Snapshot{State: fsm.StateSubmitting, Text: "hi"}, mode: ModeBusy},
		{name: "transcribing busy", snap: Snapshot{State: fsm.StateTranscribing}, mode: ModeBusy},
		{name: "error records", snap: Snapshot{State: fsm.StateError, Text: "hi"}, mode: ModeRecord, action: Record{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.mode, tc.snap.Mode())
			require.Equal(t, tc.action, tc.snap.PrimaryAction())
		})
	}
}

func TestSnapshotFlags(t *testing.T) {
	require.True(t, Snapshot{State: fsm.StateSubmitting}.IsBusy())
	require.True(t, Snapshot{State: fsm.StateTranscribing}.IsBusy())
	require.False(t, Snapshot{State: fsm.StateRecording}.IsBusy())
	require.True(t, Snapshot{State: fsm.StateRecording}.IsRecording())
	require.True(t, Snapshot{State: fsm.StateError}.HasError())
	require.False(t, Snapshot{State: fsm.StateSubmitting, Text: "x"}.CanSubmit())
}

func TestPayloadEmpty(t *testing.T) {
	var nilPayload *Payload
	require.True(t, nilPayload.Empty())
	require.True(t, (&Payload{}).Empty())
	require.False(t, (&Payload{Data: []byte{0}}).Empty())
}

func TestStopRecordingKind(t *testing.T) {
	require.Equal(t, fsm.EventStopRecording, StopRecording{Save: true}.Kind())
	require.Equal(t, fsm.EventCancelRecording, StopRecording{}.Kind())
	require.Equal(t, fsm.EventTextChanged, TextChanged{Value: "x"}.Kind())
}

func TestErrorTypesUnwrap(t *testing.T) {
	cause := &DeviceError{}
	require.Equal(t, "audio device unavailable", cause.Error())

	sub := &SubmissionError{Status: 429, Err: errTest("rate limited")}
	require.Equal(t, "rate limited", sub.Error())
	require.ErrorIs(t, sub, errTest("rate limited"))

	tr := &TranscriptionError{Message: "no speech recognized"}
	require.Equal(t, "no speech recognized", tr.Error())
}

type errTest string

func (e errTest) Error() string { return string(e) }
