// Package app wires the command line to the entry controller, its
// collaborators, and the session socket.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/rbright/loop/internal/audio"
	"github.com/rbright/loop/internal/cli"
	"github.com/rbright/loop/internal/config"
	"github.com/rbright/loop/internal/doctor"
	"github.com/rbright/loop/internal/entry"
	"github.com/rbright/loop/internal/logging"
	"github.com/rbright/loop/internal/provider"
	"github.com/rbright/loop/internal/version"
)

const binaryName = "loop"

type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Interactive reports whether to show the terminal widget. Nil checks
	// whether stdin and stdout are terminals.
	Interactive func() bool
	// OpenBackend connects to the audio backend. Nil uses audio.OpenBackend.
	OpenBackend func(name string) (audio.Backend, error)
	// Services builds the provider clients. Nil uses provider.FromConfig.
	Services func(config.Config) (entry.Transcriber, entry.Submitter, error)
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Log.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		if !parsed.Command.Remote() {
			msg := w.Message
			if w.Line > 0 {
				msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
			}
			fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		}
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	if parsed.Command.Remote() {
		return r.commandRemote(ctx, parsed)
	}

	switch parsed.Command {
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, logger)
	case cli.CommandSend:
		return r.commandSend(ctx, cfgLoaded.Config, parsed.Text, logger)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded, doctor.Options{OpenBackend: r.openBackend})
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx, cfgLoaded.Config)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) openBackend(name string) (audio.Backend, error) {
	if r.OpenBackend != nil {
		return r.OpenBackend(name)
	}
	return audio.OpenBackend(name)
}

func (r Runner) services(cfg config.Config) (entry.Transcriber, entry.Submitter, error) {
	if r.Services != nil {
		return r.Services(cfg)
	}
	return provider.FromConfig(cfg)
}

func (r Runner) stdin() io.Reader {
	if r.Stdin == nil {
		return os.Stdin
	}
	return r.Stdin
}

func (r Runner) interactive() bool {
	if r.Interactive != nil {
		return r.Interactive()
	}
	in, ok := r.stdin().(*os.File)
	if !ok {
		return false
	}
	out, ok := r.Stdout.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
}

func (r Runner) commandDevices(ctx context.Context, cfg config.Config) int {
	backend, err := r.openBackend(cfg.Audio.Backend)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = backend.Close() }()

	devices, err := audio.ListDevices(ctx, backend)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintf(r.Stdout, "no %s input devices found\n", backend.Name())
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			yesNo(device.Available),
			yesNo(device.Muted),
		)
	}
	return 0
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
