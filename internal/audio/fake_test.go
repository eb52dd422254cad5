package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type fakeBackend struct {
	devices  []Device
	listErr  error
	openErr  error
	startErr error

	closes atomic.Int32

	mu      sync.Mutex
	streams []*fakeStream
}

func (*fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Devices(context.Context) ([]Device, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]Device(nil), b.devices...), nil
}

func (b *fakeBackend) Open(device Device, format Format, onPCM PCMFunc) (Stream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	s := &fakeStream{device: device, format: format, onPCM: onPCM, startErr: b.startErr}
	b.mu.Lock()
	b.streams = append(b.streams, s)
	b.mu.Unlock()
	return s, nil
}

func (b *fakeBackend) Close() error {
	b.closes.Add(1)
	return nil
}

func (b *fakeBackend) lastStream() *fakeStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.streams) == 0 {
		return nil
	}
	return b.streams[len(b.streams)-1]
}

type fakeStream struct {
	device   Device
	format   Format
	onPCM    PCMFunc
	startErr error

	started atomic.Bool
	stopped atomic.Bool
	closed  atomic.Bool
}

func (s *fakeStream) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started.Store(true)
	return nil
}

func (s *fakeStream) Stop() error {
	s.stopped.Store(true)
	return nil
}

func (s *fakeStream) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *fakeStream) feed(samples ...int16) {
	if s.closed.Load() {
		return
	}
	s.onPCM(samples)
}

func fakeOpener(b *fakeBackend, opens *atomic.Int32) Opener {
	return func() (Backend, error) {
		if opens != nil {
			opens.Add(1)
		}
		if b == nil {
			return nil, errors.New("no audio server")
		}
		return b, nil
	}
}

func defaultDevices() []Device {
	return []Device{
		{ID: "builtin", Description: "Built-in Microphone", Available: true, Default: true},
		{ID: "usb", Description: "USB Headset", Available: true},
	}
}
