//go:build integration && linux && !portaudio

package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListDevicesIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	backend, err := OpenBackend("pulse")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	devices, err := ListDevices(ctx, backend)
	require.NoError(t, err)
	require.NotEmpty(t, devices)

	selection, err := SelectDevice(ctx, backend, "default", "default")
	require.NoError(t, err)
	require.NotEmpty(t, selection.Device.ID)
}
