package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rbright/loop/internal/audio"
	"github.com/rbright/loop/internal/config"
	"github.com/rbright/loop/internal/entry"
	"github.com/rbright/loop/internal/ipc"
	"github.com/rbright/loop/internal/logging"
	"github.com/rbright/loop/internal/output"
	"github.com/rbright/loop/internal/tui"
)

// session is one entry widget with its microphone and provider clients.
type session struct {
	ctrl     *entry.Controller
	recorder *audio.Recorder
	logger   *slog.Logger
}

func (r Runner) newSession(cfg config.Config, logger *slog.Logger, withAudio bool) (*session, error) {
	transcriber, submitter, err := r.services(cfg)
	if err != nil {
		logger.Warn("provider setup incomplete", "error", err.Error())
	}

	opts := entry.Options{
		Logger:            logger,
		SubmitTimeout:     cfg.Timeouts.Submit(),
		TranscribeTimeout: cfg.Timeouts.Transcribe(),
	}
	if cfg.Output.CopyReply {
		opts.Committer = output.NewCommitter(logger)
	}

	s := &session{logger: logger}
	var device entry.CaptureDevice
	if withAudio {
		handle := audio.NewHandle(func() (audio.Backend, error) {
			return r.openBackend(cfg.Audio.Backend)
		})
		s.recorder = audio.NewRecorder(handle, audio.RecorderOptions{
			Input:          cfg.Audio.Input,
			Fallback:       cfg.Audio.Fallback,
			SampleRate:     cfg.Audio.SampleRate,
			Format:         cfg.Audio.Format,
			VolumeInterval: cfg.Audio.VolumeInterval(),
			DumpDir:        audioDumpDir(cfg, logger),
			Logger:         logger,
		})
		device = s.recorder
	}

	s.ctrl = entry.NewController(device, transcriber, submitter, opts)
	return s, err
}

func (s *session) Close() {
	s.ctrl.Close()
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			s.logger.Warn("release recorder failed", "error", err.Error())
		}
	}
}

func audioDumpDir(cfg config.Config, logger *slog.Logger) string {
	if !cfg.Debug.AudioDump {
		return ""
	}
	stateDir, err := logging.StateDir()
	if err != nil {
		logger.Warn("audio dump disabled", "error", err.Error())
		return ""
	}
	return filepath.Join(stateDir, "debug")
}

// commandRun owns the session socket and shows the entry widget, or reads
// lines when stdin is not a terminal.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, ipc.AcquireOptions{
		ProbeTimeout: 180 * time.Millisecond,
		Retries:      8,
		OnStale: func(path string) {
			logger.Warn("removed stale session socket", "path", path)
		},
	})
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintf(r.Stderr, "error: %v; drive it with `%s toggle` or `%s send`\n", err, binaryName, binaryName)
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	sess, _ := r.newSession(cfg, logger, true)
	defer sess.Close()

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, sess.ctrl)
	}()

	exitCode := 0
	if r.interactive() {
		if err := tui.Run(ctx, sess.ctrl, r.stdin(), r.Stdout); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			exitCode = 1
		}
	} else if failures := r.lineMode(ctx, sess.ctrl); failures > 0 {
		exitCode = 1
	}

	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		exitCode = 1
	}

	final := sess.ctrl.State()
	logger.Info("session finished", "state", final.State, "exit_code", exitCode)
	return exitCode
}
