package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned when audio.backend names a backend this build lacks.
var ErrUnknownBackend = errors.New("audio backend not available in this build")

// Format is the PCM layout a stream delivers. Capture is always 16-bit mono.
type Format struct {
	SampleRate int
}

// PCMFunc receives signed 16-bit mono samples. The slice is only valid during the call.
type PCMFunc func([]int16)

// Backend is the platform audio system. One Backend may serve many streams.
type Backend interface {
	Name() string
	Devices(context.Context) ([]Device, error)
	Open(device Device, format Format, onPCM PCMFunc) (Stream, error)
	Close() error
}

// Stream is one open capture stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// NativeBackend names the backend compiled into this binary.
func NativeBackend() string {
	return nativeBackendName
}

// OpenBackend connects to the named backend. Empty and "auto" select the native one.
func OpenBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" && name != "auto" && name != nativeBackendName {
		return nil, fmt.Errorf("%w: %q (this build has %q)", ErrUnknownBackend, name, nativeBackendName)
	}
	backend, err := openNative()
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", nativeBackendName, err)
	}
	return backend, nil
}
