package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func serveOn(t *testing.T, socketPath string, handler Handler) (cancel func(), done <-chan error) {
	t.Helper()
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancelFn := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() { serveDone <- Serve(ctx, listener, handler) }()
	t.Cleanup(cancelFn)
	return cancelFn, serveDone
}

func TestSendRoundTrip(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "loop.sock")
	var got Request
	cancel, done := serveOn(t, socketPath, HandlerFunc(func(_ context.Context, req Request) Response {
		got = req
		return Response{OK: true, State: "typing", Text: req.Text}
	}))

	resp, err := Send(context.Background(), socketPath, Request{Command: CommandText, Text: "draft"}, 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Equal(t, "typing", resp.State)
	require.Equal(t, "draft", resp.Text)
	require.Equal(t, Request{Command: CommandText, Text: "draft"}, got)

	cancel()
	require.NoError(t, <-done)
}

func TestServeAnswersPipelinedRequestsInOrder(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "loop.sock")
	cancel, done := serveOn(t, socketPath, HandlerFunc(func(_ context.Context, req Request) Response {
		return Response{OK: true, Message: req.Command}
	}))

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(`{"command":"text","text":"hi"}` + "\n" + `{"command":"submit"}` + "\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	for _, want := range []string{CommandText, CommandSubmit} {
		line, err := reader.ReadBytes('\n')
		require.NoError(t, err)
		var resp Response
		require.NoError(t, json.Unmarshal(line, &resp))
		require.Equal(t, want, resp.Message)
	}

	cancel()
	require.NoError(t, <-done)
}

func TestSendDecodeResponseError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "loop.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		_, _ = reader.ReadBytes('\n')
		_, _ = conn.Write([]byte("not-json\n"))
	}()

	_, err = Send(context.Background(), socketPath, Request{Command: CommandStatus}, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestSendReadResponseError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "loop.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		_ = conn.Close()
	}()

	_, err = Send(context.Background(), socketPath, Request{Command: CommandStatus}, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read response")
}

func TestServeDecodeRequestErrorKeepsConnection(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "loop.sock")
	cancel, done := serveOn(t, socketPath, HandlerFunc(func(_ context.Context, _ Request) Response {
		return Response{OK: true, State: "idle"}
	}))

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	_, err = conn.Write([]byte("not-json\n"))
	require.NoError(t, err)
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal(line, &resp))
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "decode request")

	_, err = conn.Write([]byte(`{"command":"status"}` + "\n"))
	require.NoError(t, err)
	line, err = reader.ReadBytes('\n')
	require.NoError(t, err)
	resp = Response{}
	require.NoError(t, json.Unmarshal(line, &resp))
	require.True(t, resp.OK)

	cancel()
	require.NoError(t, <-done)
}

func TestServeStopsWithIdleClientConnected(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "loop.sock")
	cancel, done := serveOn(t, socketPath, HandlerFunc(func(_ context.Context, _ Request) Response {
		return Response{OK: true}
	}))

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return with an idle client connected")
	}
}

func TestProbe(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "loop.sock")
	cancel, done := serveOn(t, socketPath, HandlerFunc(func(_ context.Context, req Request) Response {
		if req.Command == CommandStatus {
			return Response{OK: true, State: "idle"}
		}
		return Response{OK: false, Error: "bad"}
	}))

	alive, probeErr := Probe(context.Background(), socketPath, 200*time.Millisecond)
	require.NoError(t, probeErr)
	require.True(t, alive)

	cancel()
	require.NoError(t, <-done)

	alive, probeErr = Probe(context.Background(), socketPath, 100*time.Millisecond)
	require.NoError(t, probeErr)
	require.False(t, alive)
}

func TestUnreachable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "missing file", err: os.ErrNotExist, want: true},
		{name: "wrapped enoent", err: fmt.Errorf("dial unix: %w", syscall.ENOENT), want: true},
		{name: "refused", err: fmt.Errorf("dial unix: %w", syscall.ECONNREFUSED), want: true},
		{name: "timeout", err: os.ErrDeadlineExceeded, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Unreachable(tc.err))
		})
	}
}
