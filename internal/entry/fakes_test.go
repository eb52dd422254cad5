package entry

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rbright/loop/internal/fsm"
)

type fakeDevice struct {
	startErr    error
	stopErr     error
	teardownErr error
	payload     *Payload

	starts   atomic.Int32
	saves    atomic.Int32
	discards atomic.Int32
	active   atomic.Bool
	volumeMu sync.Mutex
	volumeFn func(float64)
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{payload: &Payload{Data: []byte{1, 2, 3, 4}, Format: "wav", SampleRate: 16000}}
}

func (f *fakeDevice) Start(context.Context) error {
	f.starts.Add(1)
	if f.startErr != nil {
		return f.startErr
	}
	f.active.Store(true)
	return nil
}

func (f *fakeDevice) Stop(_ context.Context, save bool) (*Payload, error) {
	f.active.Store(false)
	if !save {
		f.discards.Add(1)
		return nil, nil
	}
	f.saves.Add(1)
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return f.payload, f.teardownErr
}

func (f *fakeDevice) OnVolume(fn func(float64)) {
	f.volumeMu.Lock()
	defer f.volumeMu.Unlock()
	f.volumeFn = fn
}

func (f *fakeDevice) emit(level float64) {
	f.volumeMu.Lock()
	fn := f.volumeFn
	f.volumeMu.Unlock()
	if fn != nil {
		fn(level)
	}
}

// gate blocks a fake service until released, so busy states can be observed.
type gate struct {
	ch chan struct{}
}

func newGate() *gate { return &gate{ch: make(chan struct{})} }

func (g *gate) release() { close(g.ch) }

func (g *gate) wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fakeSubmitter struct {
	mu    sync.Mutex
	texts []string
	reply string
	err   error
	gate  *gate
	calls atomic.Int32
}

func (f *fakeSubmitter) Submit(ctx context.Context, text string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.texts = append(f.texts, text)
	g := f.gate
	f.mu.Unlock()

	if err := g.wait(ctx); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reply, f.err
}

func (f *fakeSubmitter) set(reply string, err error, g *gate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply, f.err, f.gate = reply, err, g
}

func (f *fakeSubmitter) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeTranscriber struct {
	mu       sync.Mutex
	text     string
	err      error
	gate     *gate
	payloads []Payload
	calls    atomic.Int32
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, payload Payload) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	g := f.gate
	f.mu.Unlock()

	if err := g.wait(ctx); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.err
}

func (f *fakeTranscriber) set(text string, err error, g *gate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text, f.err, f.gate = text, err, g
}

func waitForState(t *testing.T, ctrl *Controller, desired fsm.State) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := ctrl.State(); snap.State == desired {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s (current=%s)", desired, ctrl.State().State)
	return Snapshot{}
}

func newTestController(t *testing.T, device *fakeDevice, tr Transcriber, sub Submitter, opts Options) *Controller {
	t.Helper()
	ctrl := NewController(device, tr, sub, opts)
	t.Cleanup(ctrl.Close)
	return ctrl
}
