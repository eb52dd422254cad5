package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvPath names a config file when --config is not given.
const EnvPath = "LOOP_CONFIG"

const (
	appDirName = "loop"
	fileName   = "config.yaml"
)

// ResolvePath picks the config file: the explicit path, then $LOOP_CONFIG,
// then config.yaml under Dir. A leading "~/" expands to the home directory.
func ResolvePath(explicit string) (string, error) {
	for _, candidate := range []string{explicit, os.Getenv(EnvPath)} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return expandHome(candidate)
		}
	}

	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Dir is $XDG_CONFIG_HOME/loop, or ~/.config/loop.
func Dir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(home, ".config", appDirName), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}
