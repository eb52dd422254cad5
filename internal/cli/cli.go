// Package cli parses loop's command line.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandSend    Command = "send"
	CommandStatus  Command = "status"
	CommandText    Command = "text"
	CommandRecord  Command = "record"
	CommandStop    Command = "stop"
	CommandCancel  Command = "cancel"
	CommandSubmit  Command = "submit"
	CommandRetry   Command = "retry"
	CommandDismiss Command = "dismiss"
	CommandToggle  Command = "toggle"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandSend:    {},
	CommandStatus:  {},
	CommandText:    {},
	CommandRecord:  {},
	CommandStop:    {},
	CommandCancel:  {},
	CommandSubmit:  {},
	CommandRetry:   {},
	CommandDismiss: {},
	CommandToggle:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// takesText marks commands whose remaining arguments form the entry text.
var takesText = map[Command]bool{
	CommandSend: true,
	CommandText: true,
}

// Remote reports whether the command is forwarded to a running session.
func (c Command) Remote() bool {
	switch c {
	case CommandStatus, CommandText, CommandRecord, CommandStop, CommandCancel,
		CommandSubmit, CommandRetry, CommandDismiss, CommandToggle:
		return true
	default:
		return false
	}
}

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	// Text holds the words following send or text, joined by single spaces.
	Text string
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandRun}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			rest := args[i+1:]
			if takesText[cmd] {
				parsed.Text = strings.Join(rest, " ")
				if cmd == CommandSend && strings.TrimSpace(parsed.Text) == "" {
					return Parsed{}, errors.New("send requires text")
				}
				return parsed, nil
			}
			if len(rest) > 0 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [command]

Commands:
  run         Open the entry widget (default); reads lines when stdin is not a terminal
  send TEXT   Submit TEXT once and print the reply
  status      Print the running session's state
  text TEXT   Replace the running session's entry text
  record      Start recording in the running session
  stop        Stop recording and transcribe
  cancel      Stop recording and discard the audio
  submit      Submit the running session's entry text
  retry       Retry the failed submission or transcription
  dismiss     Dismiss the current error
  toggle      Run the primary action (record, stop, or submit)
  devices     List available input devices
  doctor      Run configuration and environment checks
  version     Print version information
  help        Show this help

Flags:
  --config PATH   Config file path (default: $LOOP_CONFIG, then $XDG_CONFIG_HOME/loop/config.yaml)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
