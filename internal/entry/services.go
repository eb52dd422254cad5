package entry

import "context"

// CaptureDevice is the microphone capability set the controller drives.
type CaptureDevice interface {
	Start(context.Context) error
	// Stop ends capture synchronously. With save=false the payload is discarded.
	Stop(ctx context.Context, save bool) (*Payload, error)
	OnVolume(func(float64))
}

// Transcriber maps a recording to text.
type Transcriber interface {
	Transcribe(context.Context, Payload) (string, error)
}

// Submitter forwards entry text and returns the reply.
type Submitter interface {
	Submit(context.Context, string) (string, error)
}

// Committer receives every successful reply.
type Committer interface {
	Commit(context.Context, string) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(context.Context, string) error

func (f CommitFunc) Commit(ctx context.Context, reply string) error {
	return f(ctx, reply)
}

// nopDevice keeps the controller usable when no microphone is wired.
type nopDevice struct{}

func (nopDevice) Start(context.Context) error {
	return &DeviceError{}
}

func (nopDevice) Stop(context.Context, bool) (*Payload, error) { return nil, nil }
func (nopDevice) OnVolume(func(float64))                       {}
