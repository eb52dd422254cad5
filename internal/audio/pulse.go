//go:build linux && !portaudio

package audio

import (
	"context"
	"fmt"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const nativeBackendName = "pulse"

type pulseBackend struct {
	client *pulse.Client
}

func openNative() (Backend, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("loop"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return &pulseBackend{client: client}, nil
}

func (*pulseBackend) Name() string { return nativeBackendName }

func (b *pulseBackend) Devices(_ context.Context) ([]Device, error) {
	defaultSource, err := b.client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}
	defaultID := defaultSource.ID()

	var infos pulseproto.GetSourceInfoListReply
	if err := b.client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          info.SourceName,
			Description: info.Device,
			State:       sourceStateString(info.State),
			Available:   sourceAvailable(info),
			Muted:       info.Mute,
			Default:     info.SourceName == defaultID,
		})
	}
	return devices, nil
}

func (b *pulseBackend) Open(device Device, format Format, onPCM PCMFunc) (Stream, error) {
	source, err := b.client.SourceByID(device.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve source %q: %w", device.ID, err)
	}

	writer := pulse.Int16Writer(func(buf []int16) (int, error) {
		if len(buf) > 0 {
			onPCM(buf)
		}
		return len(buf), nil
	})
	stream, err := b.client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(format.SampleRate),
		pulse.RecordLatency(0.05),
		pulse.RecordMediaName("loop voice entry"),
	)
	if err != nil {
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}
	return &pulseStream{stream: stream}, nil
}

func (b *pulseBackend) Close() error {
	b.client.Close()
	return nil
}

type pulseStream struct {
	stream *pulse.RecordStream
}

func (s *pulseStream) Start() error {
	s.stream.Start()
	return nil
}

func (s *pulseStream) Stop() error {
	s.stream.Stop()
	return nil
}

func (s *pulseStream) Close() error {
	s.stream.Close()
	return nil
}

// sourceStateString maps Pulse source state constants to human-readable values.
func sourceStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// sourceAvailable reports whether the active port of a source is plugged in.
func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// unknown=0, no=1, yes=2
		return port.Available != 1
	}
	return true
}
