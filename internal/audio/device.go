// Package audio captures microphone input and encodes finished recordings.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Device describes one capture source reported by a backend.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Label is the human-readable name used in logs and payload metadata.
func (d Device) Label() string {
	if d.Description != "" {
		return d.Description
	}
	return d.ID
}

// Selection is the resolved capture source plus an optional fallback warning.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// ListDevices returns the capture sources the backend can see.
func ListDevices(ctx context.Context, backend Backend) ([]Device, error) {
	devices, err := backend.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s devices: %w", backend.Name(), err)
	}
	return devices, nil
}

// SelectDevice resolves audio.input/audio.fallback preferences against live devices.
func SelectDevice(ctx context.Context, backend Backend, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx, backend)
	if err != nil {
		return Selection{}, err
	}
	return selectFromList(devices, input, fallback)
}

// selectFromList picks input when usable, otherwise fallback, otherwise the default.
// A muted or unavailable pick is only accepted when nothing better exists.
func selectFromList(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	input = normalizeTerm(input)
	fallback = normalizeTerm(fallback)

	var defaultDevice, byInput, byFallback *Device
	for i := range devices {
		dev := &devices[i]
		if dev.Default && defaultDevice == nil {
			defaultDevice = dev
		}
		if byInput == nil && input != "" && deviceMatches(*dev, input) {
			byInput = dev
		}
		if byFallback == nil && fallback != "" && deviceMatches(*dev, fallback) {
			byFallback = dev
		}
	}
	if defaultDevice == nil && len(devices) == 1 {
		defaultDevice = &devices[0]
	}

	var primary *Device
	switch {
	case input == "":
		if defaultDevice == nil {
			return Selection{}, errors.New("default audio source is unavailable")
		}
		primary = defaultDevice
	case byInput != nil:
		primary = byInput
	default:
		return Selection{}, fmt.Errorf("audio.input %q did not match any device", input)
	}

	if usable(*primary) {
		return Selection{Device: *primary}, nil
	}

	reason := "unavailable"
	if primary.Muted {
		reason = "muted"
	}

	alternate := defaultDevice
	if fallback != "" {
		if byFallback == nil {
			return Selection{}, fmt.Errorf("audio input %q is %s and fallback %q not found", primary.ID, reason, fallback)
		}
		alternate = byFallback
	}
	if alternate == nil {
		return Selection{}, fmt.Errorf("audio input %q is %s and no default source exists", primary.ID, reason)
	}
	if !alternate.Available {
		return Selection{}, fmt.Errorf("audio fallback device %q is not available", alternate.ID)
	}
	if alternate.Muted {
		return Selection{}, fmt.Errorf("audio fallback device %q is muted", alternate.ID)
	}

	return Selection{
		Device:   *alternate,
		Warning:  fmt.Sprintf("audio input %q is %s; falling back to %q", primary.ID, reason, alternate.ID),
		Fallback: primary.ID != alternate.ID,
	}, nil
}

func usable(d Device) bool {
	return d.Available && !d.Muted
}

func normalizeTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "default" {
		return ""
	}
	return term
}

// deviceMatches reports whether a search term matches a device id or description.
func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(device.ID), term) ||
		strings.Contains(strings.ToLower(device.Description), term)
}
