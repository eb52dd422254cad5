//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gordonklaus/portaudio"
)

const nativeBackendName = "portaudio"

type portaudioBackend struct{}

func openNative() (Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	return portaudioBackend{}, nil
}

func (portaudioBackend) Name() string { return nativeBackendName }

func (portaudioBackend) Devices(_ context.Context) ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio devices: %w", err)
	}
	defaultInput, _ := portaudio.DefaultInputDevice()

	var devices []Device
	for i, info := range infos {
		if info == nil || info.MaxInputChannels < 1 {
			continue
		}
		devices = append(devices, Device{
			ID:          strconv.Itoa(i),
			Description: info.Name,
			State:       "idle",
			Available:   true,
			Default:     defaultInput != nil && info.Name == defaultInput.Name,
		})
	}
	return devices, nil
}

func (portaudioBackend) Open(device Device, format Format, onPCM PCMFunc) (Stream, error) {
	info, err := portaudioDevice(device.ID)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(format.SampleRate)
	params.FramesPerBuffer = format.SampleRate / 50

	stream, err := portaudio.OpenStream(params, func(in []int16) {
		if len(in) > 0 {
			onPCM(in)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open portaudio stream: %w", err)
	}
	return stream, nil
}

func (portaudioBackend) Close() error {
	return portaudio.Terminate()
}

func portaudioDevice(id string) (*portaudio.DeviceInfo, error) {
	if id == "" {
		return portaudio.DefaultInputDevice()
	}
	index, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid portaudio device id %q: %w", id, err)
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio devices: %w", err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("portaudio device %d not found", index)
	}
	return infos[index], nil
}
