// Package entry drives the text/voice entry widget through its state machine.
package entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/rbright/loop/internal/fsm"
)

// ErrServiceUnavailable is returned by the fallback services used when none is wired.
var ErrServiceUnavailable = errors.New("service not configured")

// Options carries optional controller wiring.
type Options struct {
	Logger    *slog.Logger
	Committer Committer
	// Zero disables the deadline.
	SubmitTimeout     time.Duration
	TranscribeTimeout time.Duration
}

// Controller owns one entry widget. All state changes are serialized through
// dispatchMu; snapshot reads only take mu.
type Controller struct {
	logger            *slog.Logger
	device            CaptureDevice
	transcriber       Transcriber
	submitter         Submitter
	commit            Committer
	submitTimeout     time.Duration
	transcribeTimeout time.Duration

	baseCtx    context.Context
	baseCancel context.CancelFunc

	dispatchMu sync.Mutex
	seq        uint64
	cancelOp   context.CancelFunc
	closed     bool

	mu   sync.RWMutex
	snap Snapshot
	subs map[chan Snapshot]struct{}

	wg sync.WaitGroup
}

// NewController constructs an idle controller with safe fallbacks for nil collaborators.
func NewController(device CaptureDevice, transcriber Transcriber, submitter Submitter, opts Options) *Controller {
	if device == nil {
		device = nopDevice{}
	}
	if transcriber == nil {
		transcriber = unavailableTranscriber{}
	}
	if submitter == nil {
		submitter = unavailableSubmitter{}
	}
	commit := opts.Committer
	if commit == nil {
		commit = CommitFunc(func(context.Context, string) error { return nil })
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		logger:            logger,
		device:            device,
		transcriber:       transcriber,
		submitter:         submitter,
		commit:            commit,
		submitTimeout:     opts.SubmitTimeout,
		transcribeTimeout: opts.TranscribeTimeout,
		baseCtx:           ctx,
		baseCancel:        cancel,
		snap:              Snapshot{State: fsm.StateIdle},
		subs:              make(map[chan Snapshot]struct{}),
	}
	device.OnVolume(c.onVolume)
	return c
}

// State returns the current snapshot.
func (c *Controller) State() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Dispatch applies one event. Events the current state does not handle are ignored.
func (c *Controller) Dispatch(ev Event) {
	c.apply(ev)
}

// Subscribe returns a channel that always holds the latest snapshot, and a
// function that stops delivery. The channel is closed on unsubscribe or Close.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	if c.subs == nil {
		close(ch)
		c.mu.Unlock()
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	ch <- c.snap
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
		})
	}
}

// Close cancels in-flight work, releases the capture device, and waits for
// service goroutines to return. Later dispatches are ignored.
func (c *Controller) Close() {
	c.dispatchMu.Lock()
	if c.closed {
		c.dispatchMu.Unlock()
		return
	}
	c.closed = true
	c.seq++
	if c.State().State == fsm.StateRecording {
		c.stopDevice(false)
		c.update(func(s *Snapshot) { s.Volume = 0 })
	}
	c.baseCancel()
	c.dispatchMu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	for ch := range c.subs {
		close(ch)
	}
	c.subs = nil
	c.mu.Unlock()
}

// apply reports whether ev caused a transition.
func (c *Controller) apply(ev Event) bool {
	if ev == nil {
		return false
	}

	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	if c.closed {
		return false
	}

	switch e := ev.(type) {
	case TextChanged:
		return c.onTextChanged(e.Value)
	case Record:
		return c.onRecord()
	case StopRecording:
		if !e.Save {
			return c.onCancelRecording()
		}
		return c.onStopRecording()
	case CancelRecording:
		return c.onCancelRecording()
	case Submit:
		return c.onSubmit()
	case Retry:
		return c.onRetry()
	case Dismiss:
		return c.onDismiss()
	default:
		c.logger.Debug("unknown entry event", "event", fmt.Sprintf("%T", ev))
		return false
	}
}

func (c *Controller) onTextChanged(value string) bool {
	prev := c.State()
	next, ok := c.next(prev, fsm.EventTextChanged, fsm.Guards{BlankText: isBlank(value)})
	if !ok {
		return false
	}
	if prev.State == fsm.StateRecording {
		c.stopDevice(false)
	}
	c.update(func(s *Snapshot) {
		s.State = next
		s.Text = value
		s.Volume = 0
		clearError(s)
	})
	return true
}

func (c *Controller) onRecord() bool {
	prev := c.State()
	next, ok := c.next(prev, fsm.EventRecord, guardsFor(prev))
	if !ok {
		return false
	}

	if err := c.device.Start(c.baseCtx); err != nil {
		c.failDevice(err, userMessage(asDeviceError(err), "audio device unavailable"))
		return true
	}
	c.update(func(s *Snapshot) {
		s.State = next
		s.Volume = 0
	})
	return true
}

func (c *Controller) onStopRecording() bool {
	prev := c.State()
	next, ok := c.next(prev, fsm.EventStopRecording, guardsFor(prev))
	if !ok {
		return false
	}

	payload, err := c.stopDevice(true)
	if err != nil {
		if payload.Empty() {
			c.failDevice(err, userMessage(asDeviceError(err), "audio device unavailable"))
			return true
		}
		c.logger.Warn("recording teardown failed; keeping captured audio", "error", err.Error())
	}
	if payload.Empty() {
		c.failDevice(errors.New("empty recording"), noAudioMessage)
		return true
	}

	c.update(func(s *Snapshot) {
		s.State = next
		s.Volume = 0
		s.Audio = payload
	})
	c.startTranscribe(*payload)
	return true
}

func (c *Controller) onCancelRecording() bool {
	prev := c.State()
	next, ok := c.next(prev, fsm.EventCancelRecording, guardsFor(prev))
	if !ok {
		return false
	}
	c.stopDevice(false)
	c.update(func(s *Snapshot) {
		s.State = next
		s.Volume = 0
	})
	return true
}

func (c *Controller) onSubmit() bool {
	prev := c.State()
	next, ok := c.next(prev, fsm.EventSubmit, guardsFor(prev))
	if !ok {
		return false
	}
	c.update(func(s *Snapshot) {
		s.State = next
		clearError(s)
	})
	c.startSubmit(prev.Text)
	return true
}

func (c *Controller) onRetry() bool {
	prev := c.State()
	next, ok := c.next(prev, fsm.EventRetry, guardsFor(prev))
	if !ok {
		return false
	}
	c.update(func(s *Snapshot) {
		s.State = next
		clearError(s)
	})

	switch next {
	case fsm.StateSubmitting:
		c.startSubmit(prev.Text)
	case fsm.StateTranscribing:
		c.startTranscribe(*prev.Audio)
	}
	return true
}

func (c *Controller) onDismiss() bool {
	prev := c.State()
	next, ok := c.next(prev, fsm.EventDismiss, guardsFor(prev))
	if !ok {
		return false
	}
	c.update(func(s *Snapshot) {
		s.State = next
		clearError(s)
	})
	return true
}

// failDevice moves Recording (entered or about to be) into Error with no retryable op.
func (c *Controller) failDevice(err error, message string) {
	c.logger.Warn("audio device failed", "error", err.Error())
	next, terr := fsm.Transition(fsm.StateRecording, fsm.EventDeviceFailed, fsm.Guards{})
	if terr != nil {
		c.logger.Error("device failure transition", "error", terr.Error())
		return
	}
	c.update(func(s *Snapshot) {
		s.State = next
		s.Volume = 0
		s.ErrorMessage = message
		s.LastOp = fsm.OpNone
	})
}

func (c *Controller) startSubmit(text string) {
	ctx, seq := c.beginOp(c.submitTimeout)
	c.logger.Debug("submission started", "chars", len(text))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		reply, err := callSafely(func() (string, error) { return c.submitter.Submit(ctx, text) })
		if c.completeSubmit(seq, reply, err) && err == nil {
			if cerr := c.commit.Commit(c.baseCtx, reply); cerr != nil {
				c.logger.Warn("commit reply failed", "error", cerr.Error())
			}
		}
	}()
}

func (c *Controller) startTranscribe(payload Payload) {
	ctx, seq := c.beginOp(c.transcribeTimeout)
	c.logger.Debug("transcription started",
		"bytes", len(payload.Data),
		"format", payload.Format,
		"duration_ms", payload.Duration.Milliseconds(),
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		text, err := callSafely(func() (string, error) { return c.transcriber.Transcribe(ctx, payload) })
		c.completeTranscribe(seq, text, err)
	}()
}

// beginOp must be called with dispatchMu held.
func (c *Controller) beginOp(timeout time.Duration) (context.Context, uint64) {
	if c.cancelOp != nil {
		c.cancelOp()
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(c.baseCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(c.baseCtx)
	}
	c.seq++
	c.cancelOp = cancel
	return ctx, c.seq
}

// finishOp reports whether seq is still the current operation, and retires it.
func (c *Controller) finishOp(seq uint64) bool {
	if c.closed || seq != c.seq {
		return false
	}
	if c.cancelOp != nil {
		c.cancelOp()
		c.cancelOp = nil
	}
	return true
}

func (c *Controller) completeSubmit(seq uint64, reply string, err error) bool {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	if !c.finishOp(seq) {
		c.logger.Debug("dropping stale submission result", "seq", seq)
		return false
	}

	prev := c.State()
	if err != nil {
		var subErr *SubmissionError
		if !errors.As(err, &subErr) {
			subErr = &SubmissionError{Err: err}
		}
		c.logger.Warn("submission failed", "error", subErr.Error(), "status", subErr.Status)
		next, ok := c.next(prev, fsm.EventSubmitRejected, guardsFor(prev))
		if !ok {
			return false
		}
		c.update(func(s *Snapshot) {
			s.State = next
			s.ErrorMessage = userMessage(err, defaultSubmitMessage)
			s.LastOp = fsm.OpSubmit
		})
		return true
	}

	next, ok := c.next(prev, fsm.EventSubmitResolved, fsm.Guards{BlankText: true})
	if !ok {
		return false
	}
	c.logger.Info("submission completed", "reply_chars", len(reply))
	c.update(func(s *Snapshot) {
		s.State = next
		s.Text = ""
		s.Reply = reply
	})
	return true
}

func (c *Controller) completeTranscribe(seq uint64, text string, err error) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	if !c.finishOp(seq) {
		c.logger.Debug("dropping stale transcription result", "seq", seq)
		return
	}

	prev := c.State()
	if err != nil {
		var trErr *TranscriptionError
		if !errors.As(err, &trErr) {
			trErr = &TranscriptionError{Err: err}
		}
		c.logger.Warn("transcription failed", "error", trErr.Error())
		next, ok := c.next(prev, fsm.EventTranscribeRejected, guardsFor(prev))
		if !ok {
			return
		}
		c.update(func(s *Snapshot) {
			s.State = next
			s.ErrorMessage = userMessage(err, defaultTranscribeMessage)
			s.LastOp = fsm.OpTranscribe
		})
		return
	}

	next, ok := c.next(prev, fsm.EventTranscribeResolved, fsm.Guards{BlankText: isBlank(text)})
	if !ok {
		return
	}
	c.logger.Info("transcription completed", "chars", len(text))
	c.update(func(s *Snapshot) {
		s.State = next
		s.Text = text
		s.Audio = nil
	})
}

// next runs the pure transition and logs the outcome.
func (c *Controller) next(prev Snapshot, event fsm.Event, g fsm.Guards) (fsm.State, bool) {
	next, err := fsm.Transition(prev.State, event, g)
	if err != nil {
		c.logger.Debug("entry event ignored", "state", string(prev.State), "event", string(event), "reason", err.Error())
		return prev.State, false
	}
	c.logger.Debug("entry transition", "from", string(prev.State), "event", string(event), "to", string(next))
	return next, true
}

// stopDevice must be called with dispatchMu held and mu released.
func (c *Controller) stopDevice(save bool) (*Payload, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := c.device.Stop(ctx, save)
	if err != nil && !save {
		c.logger.Warn("discarding recording failed", "error", err.Error())
	}
	return payload, err
}

func (c *Controller) onVolume(level float64) {
	switch {
	case level < 0 || math.IsNaN(level):
		level = 0
	case level > 1:
		level = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap.State != fsm.StateRecording {
		return
	}
	c.snap.Volume = level
	c.publishLocked()
}

func (c *Controller) update(mutate func(*Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mutate(&c.snap)
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- c.snap
	}
}

func guardsFor(s Snapshot) fsm.Guards {
	return fsm.Guards{
		BlankText:  isBlank(s.Text),
		LastOp:     s.LastOp,
		HasPayload: !s.Audio.Empty(),
	}
}

func clearError(s *Snapshot) {
	s.ErrorMessage = ""
	s.LastOp = fsm.OpNone
}

func asDeviceError(err error) error {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr
	}
	return &DeviceError{Err: err}
}

// callSafely turns a panicking service into an ordinary rejection.
func callSafely(call func() (string, error)) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("service panic: %v", r)
		}
	}()
	return call()
}

type unavailableTranscriber struct{}

func (unavailableTranscriber) Transcribe(context.Context, Payload) (string, error) {
	return "", &TranscriptionError{Err: ErrServiceUnavailable}
}

type unavailableSubmitter struct{}

func (unavailableSubmitter) Submit(context.Context, string) (string, error) {
	return "", &SubmissionError{Err: ErrServiceUnavailable}
}
