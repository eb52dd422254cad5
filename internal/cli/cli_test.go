package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToRun(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.False(t, parsed.ShowHelp)
	require.Equal(t, CommandRun, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/loop.yaml", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/loop.yaml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
		wantPath string
		wantText string
	}{
		{name: "help short flag", args: []string{"-h"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "help long flag", args: []string{"--help"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "help command", args: []string{"help"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "version flag", args: []string{"--version"}, wantCmd: CommandVersion},
		{name: "config only", args: []string{"--config", "/tmp/cfg"}, wantCmd: CommandRun, wantPath: "/tmp/cfg"},
		{name: "config after command", args: []string{"status", "--config", "/tmp/cfg"}, wantErr: "unexpected arguments after command"},
		{name: "missing config path", args: []string{"--config"}, wantErr: "requires a path"},
		{name: "unknown flag", args: []string{"--bogus"}, wantErr: "unknown flag"},
		{name: "unknown command", args: []string{"bogus"}, wantErr: "unknown command"},
		{name: "extra args after command", args: []string{"doctor", "extra"}, wantErr: "unexpected arguments"},
		{name: "send joins words", args: []string{"send", "what", "is", "--config"}, wantCmd: CommandSend, wantText: "what is --config"},
		{name: "send without text", args: []string{"send", " "}, wantErr: "send requires text"},
		{name: "text may clear", args: []string{"text"}, wantCmd: CommandText},
		{name: "text with words", args: []string{"--config", "/tmp/cfg", "text", "hello", "world"}, wantCmd: CommandText, wantPath: "/tmp/cfg", wantText: "hello world"},
		{name: "valid cancel command", args: []string{"cancel"}, wantCmd: CommandCancel},
		{name: "valid retry command", args: []string{"retry"}, wantCmd: CommandRetry},
		{name: "valid stop with config", args: []string{"--config", "/tmp/cfg", "stop"}, wantCmd: CommandStop, wantPath: "/tmp/cfg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
			require.Equal(t, tc.wantText, parsed.Text)
		})
	}
}

func TestRemoteCommands(t *testing.T) {
	for _, cmd := range []Command{CommandStatus, CommandText, CommandRecord, CommandStop, CommandCancel, CommandSubmit, CommandRetry, CommandDismiss, CommandToggle} {
		require.True(t, cmd.Remote(), cmd)
	}
	for _, cmd := range []Command{CommandRun, CommandSend, CommandDevices, CommandDoctor, CommandVersion, CommandHelp} {
		require.False(t, cmd.Remote(), cmd)
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("loop")
	for _, want := range []string{"run", "send TEXT", "record", "submit", "retry", "dismiss", "doctor", "--config PATH", "loop/config.yaml"} {
		require.Contains(t, text, want)
	}
}
