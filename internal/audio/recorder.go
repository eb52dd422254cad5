package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/loop/internal/entry"
)

var (
	// ErrAlreadyRecording is returned by Start while a recording is active.
	ErrAlreadyRecording = errors.New("recording already in progress")
	// ErrNotRecording is returned by Stop when no recording is active.
	ErrNotRecording = errors.New("no active recording")
)

const (
	defaultSampleRate     = 16000
	defaultVolumeInterval = 50 * time.Millisecond
)

// RecorderOptions configures capture for one entry widget.
type RecorderOptions struct {
	Input          string
	Fallback       string
	SampleRate     int
	Format         string
	VolumeInterval time.Duration
	// DumpDir receives a copy of every saved recording when set.
	DumpDir string
	Logger  *slog.Logger
	Now     func() time.Time
}

// Recorder is the microphone behind the entry controller. It borrows the
// backend from a Handle for the lifetime of each recording.
type Recorder struct {
	handle *Handle
	opts   RecorderOptions
	logger *slog.Logger

	mu       sync.Mutex
	onVolume func(float64)
	active   *recording
}

type recording struct {
	stream  Stream
	device  Device
	started time.Time

	mu      sync.Mutex
	samples []int16
	window  []int16
	closed  bool

	stopTick chan struct{}
	tickDone chan struct{}
}

var _ entry.CaptureDevice = (*Recorder)(nil)

func NewRecorder(handle *Handle, opts RecorderOptions) *Recorder {
	if opts.SampleRate <= 0 {
		opts.SampleRate = defaultSampleRate
	}
	if opts.VolumeInterval <= 0 {
		opts.VolumeInterval = defaultVolumeInterval
	}
	if opts.Format == "" {
		opts.Format = FormatWAV
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{handle: handle, opts: opts, logger: logger}
}

// OnVolume registers the meter callback. It is invoked from the ticker goroutine.
func (r *Recorder) OnVolume(fn func(float64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onVolume = fn
}

// Start selects a device, opens a stream, and begins volume sampling.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return ErrAlreadyRecording
	}

	backend, err := r.handle.Acquire()
	if err != nil {
		return &entry.DeviceError{Err: err}
	}

	rec, err := r.open(ctx, backend)
	if err != nil {
		if rerr := r.handle.Release(); rerr != nil {
			r.logger.Warn("release audio handle failed", "error", rerr.Error())
		}
		return &entry.DeviceError{Err: err}
	}

	r.active = rec
	go rec.tick(r.opts.VolumeInterval, r.onVolume)

	r.logger.Info("recording started",
		"device", rec.device.ID,
		"backend", backend.Name(),
		"sample_rate", r.opts.SampleRate,
	)
	return nil
}

func (r *Recorder) open(ctx context.Context, backend Backend) (*recording, error) {
	selection, err := SelectDevice(ctx, backend, r.opts.Input, r.opts.Fallback)
	if err != nil {
		return nil, err
	}
	if selection.Warning != "" {
		r.logger.Warn("audio device fallback", "warning", selection.Warning)
	}

	rec := &recording{
		device:   selection.Device,
		started:  r.opts.Now(),
		stopTick: make(chan struct{}),
		tickDone: make(chan struct{}),
	}
	stream, err := backend.Open(selection.Device, Format{SampleRate: r.opts.SampleRate}, rec.onPCM)
	if err != nil {
		return nil, err
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start capture stream: %w", err)
	}
	rec.stream = stream
	return rec, nil
}

// Stop tears the recording down before returning. With save=true the captured
// samples are encoded; a recording with no samples yields a nil payload.
func (r *Recorder) Stop(_ context.Context, save bool) (*entry.Payload, error) {
	r.mu.Lock()
	rec := r.active
	r.active = nil
	r.mu.Unlock()
	if rec == nil {
		return nil, ErrNotRecording
	}

	close(rec.stopTick)
	<-rec.tickDone

	var errs []error
	if err := rec.stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop capture stream: %w", err))
	}
	if err := rec.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close capture stream: %w", err))
	}
	samples := rec.drain()
	if err := r.handle.Release(); err != nil {
		errs = append(errs, err)
	}

	duration := time.Duration(len(samples)) * time.Second / time.Duration(r.opts.SampleRate)
	r.logger.Info("recording stopped",
		"device", rec.device.ID,
		"saved", save,
		"samples", len(samples),
		"duration_ms", duration.Milliseconds(),
	)

	if !save {
		return nil, errors.Join(errs...)
	}
	if len(samples) == 0 {
		return nil, errors.Join(errs...)
	}

	data, err := Encode(r.opts.Format, samples, r.opts.SampleRate)
	if err != nil {
		return nil, errors.Join(append(errs, err)...)
	}
	if r.opts.DumpDir != "" {
		if path, derr := DumpPayload(r.opts.DumpDir, r.opts.Format, data, r.opts.Now()); derr != nil {
			r.logger.Warn("audio dump failed", "error", derr.Error())
		} else {
			r.logger.Debug("audio dump written", "path", path)
		}
	}

	return &entry.Payload{
		Data:       data,
		Format:     r.opts.Format,
		SampleRate: r.opts.SampleRate,
		Duration:   duration,
		Device:     rec.device.Label(),
	}, errors.Join(errs...)
}

// Recording reports whether a capture is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Close discards any active recording.
func (r *Recorder) Close() error {
	if !r.Recording() {
		return nil
	}
	_, err := r.Stop(context.Background(), false)
	if errors.Is(err, ErrNotRecording) {
		return nil
	}
	return err
}

func (rec *recording) onPCM(samples []int16) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.closed {
		return
	}
	rec.samples = append(rec.samples, samples...)
	rec.window = append(rec.window, samples...)
}

func (rec *recording) takeWindow() []int16 {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	window := rec.window
	rec.window = nil
	return window
}

func (rec *recording) drain() []int16 {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.closed = true
	samples := rec.samples
	rec.samples = nil
	rec.window = nil
	return samples
}

func (rec *recording) tick(interval time.Duration, report func(float64)) {
	defer close(rec.tickDone)
	if report == nil {
		<-rec.stopTick
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rec.stopTick:
			return
		case <-ticker.C:
			report(Level(rec.takeWindow()))
		}
	}
}
