package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := applyKeyEnv(base)
			warnings, verr := Validate(cfg)
			if verr != nil {
				return Loaded{}, verr
			}
			return Loaded{
				Path:   resolvedPath,
				Config: cfg,
				Warnings: append([]Warning{{
					Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
				}}, warnings...),
				Exists: false,
			}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, warnings, err := Parse(string(content), base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

// applyKeyEnv fills empty api keys from the provider's conventional variable.
func applyKeyEnv(cfg Config) Config {
	if strings.TrimSpace(cfg.Transcription.APIKey) == "" {
		cfg.Transcription.APIKey = keyFromEnv(cfg.Transcription.Provider)
	}
	if strings.TrimSpace(cfg.Submission.APIKey) == "" {
		cfg.Submission.APIKey = keyFromEnv(cfg.Submission.Provider)
	}
	return cfg
}

func keyFromEnv(provider string) string {
	name, ok := providerKeyEnv[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}
