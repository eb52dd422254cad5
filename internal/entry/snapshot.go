package entry

import (
	"strings"
	"time"

	"github.com/rbright/loop/internal/fsm"
)

// Mode is the primary action the entry view should offer.
type Mode string

const (
	ModeBusy   Mode = "busy"
	ModeStop   Mode = "stop"
	ModeSubmit Mode = "submit"
	ModeRecord Mode = "record"
)

// Payload is one finished recording.
type Payload struct {
	Data       []byte
	Format     string
	SampleRate int
	Duration   time.Duration
	Device     string
}

// Empty reports whether the payload carries no audio.
func (p *Payload) Empty() bool {
	return p == nil || len(p.Data) == 0
}

// Snapshot is an immutable view of the controller at one point in time.
type Snapshot struct {
	State        fsm.State
	Text         string
	Volume       float64
	Audio        *Payload
	ErrorMessage string
	LastOp       fsm.Op
	Reply        string
}

func (s Snapshot) IsBusy() bool      { return fsm.Busy(s.State) }
func (s Snapshot) IsRecording() bool { return s.State == fsm.StateRecording }
func (s Snapshot) HasError() bool    { return s.State == fsm.StateError }

// CanSubmit is true only while typing a non-blank buffer.
func (s Snapshot) CanSubmit() bool {
	return s.State == fsm.StateTyping && !isBlank(s.Text)
}

// Mode resolves the primary action with precedence busy > stop > submit > record.
func (s Snapshot) Mode() Mode {
	switch {
	case s.IsBusy():
		return ModeBusy
	case s.IsRecording():
		return ModeStop
	case s.CanSubmit():
		return ModeSubmit
	default:
		return ModeRecord
	}
}

// PrimaryAction returns the event the primary button dispatches, or nil while busy.
func (s Snapshot) PrimaryAction() Event {
	switch s.Mode() {
	case ModeStop:
		return StopRecording{Save: true}
	case ModeSubmit:
		return Submit{}
	case ModeRecord:
		return Record{}
	default:
		return nil
	}
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
