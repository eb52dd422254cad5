//go:build !linux && !portaudio

package audio

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/gen2brain/malgo"
)

const nativeBackendName = "malgo"

type malgoBackend struct {
	ctx *malgo.AllocatedContext
}

func openNative() (Backend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init malgo context: %w", err)
	}
	return &malgoBackend{ctx: ctx}, nil
}

func (*malgoBackend) Name() string { return nativeBackendName }

func (b *malgoBackend) Devices(_ context.Context) ([]Device, error) {
	infos, err := b.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{
			ID:          hex.EncodeToString(info.ID.Pointer()[:]),
			Description: info.Name(),
			State:       "idle",
			Available:   true,
			Default:     info.IsDefault != 0,
		})
	}
	return devices, nil
}

func (b *malgoBackend) Open(device Device, format Format, onPCM PCMFunc) (Stream, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(format.SampleRate)

	if device.ID != "" {
		raw, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device id %q: %w", device.ID, err)
		}
		var id malgo.DeviceID
		copy(id[:], raw)
		cfg.Capture.DeviceID = id.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frames uint32) {
			samples := make([]int16, frames)
			for i := range samples {
				if 2*i+1 >= len(input) {
					samples = samples[:i]
					break
				}
				samples[i] = int16(binary.LittleEndian.Uint16(input[2*i:]))
			}
			if len(samples) > 0 {
				onPCM(samples)
			}
		},
	}

	dev, err := malgo.InitDevice(b.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init malgo capture: %w", err)
	}
	return &malgoStream{device: dev}, nil
}

func (b *malgoBackend) Close() error {
	if err := b.ctx.Uninit(); err != nil {
		b.ctx.Free()
		return fmt.Errorf("uninit malgo context: %w", err)
	}
	b.ctx.Free()
	return nil
}

type malgoStream struct {
	device *malgo.Device
}

func (s *malgoStream) Start() error { return s.device.Start() }
func (s *malgoStream) Stop() error  { return s.device.Stop() }

func (s *malgoStream) Close() error {
	s.device.Uninit()
	return nil
}
