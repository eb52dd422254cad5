package config

import (
	"fmt"
	"net/url"
	"strings"
)

var (
	transcriptionProviders = []string{"openai", "groq"}
	submissionProviders    = []string{"anthropic", "openai", "gemini"}
	audioBackends          = []string{"auto", "pulse", "malgo", "portaudio"}
	audioFormats           = []string{"wav", "flac"}
	logLevels              = []string{"debug", "info", "warn", "error"}
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if err := oneOf("transcription.provider", cfg.Transcription.Provider, transcriptionProviders); err != nil {
		return nil, err
	}
	if err := oneOf("submission.provider", cfg.Submission.Provider, submissionProviders); err != nil {
		return nil, err
	}
	if err := oneOf("audio.backend", cfg.Audio.Backend, audioBackends); err != nil {
		return nil, err
	}
	if err := oneOf("audio.format", cfg.Audio.Format, audioFormats); err != nil {
		return nil, err
	}
	if err := oneOf("log.level", cfg.Log.Level, logLevels); err != nil {
		return nil, err
	}
	if cfg.Audio.SampleRate < 8000 || cfg.Audio.SampleRate > 48000 {
		return nil, fmt.Errorf("audio.sample_rate must be between 8000 and 48000")
	}
	if cfg.Audio.VolumeIntervalMS <= 0 {
		return nil, fmt.Errorf("audio.volume_interval_ms must be > 0")
	}
	if cfg.Submission.MaxTokens <= 0 {
		return nil, fmt.Errorf("submission.max_tokens must be > 0")
	}
	if cfg.Timeouts.SubmitMS < 0 {
		return nil, fmt.Errorf("timeouts.submit_ms must be >= 0")
	}
	if cfg.Timeouts.TranscribeMS < 0 {
		return nil, fmt.Errorf("timeouts.transcribe_ms must be >= 0")
	}
	if err := validBaseURL("transcription.base_url", cfg.Transcription.BaseURL); err != nil {
		return nil, err
	}
	if err := validBaseURL("submission.base_url", cfg.Submission.BaseURL); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Transcription.APIKey) == "" {
		warnings = append(warnings, Warning{Message: "transcription.api_key is empty; voice input is unavailable"})
	}
	if strings.TrimSpace(cfg.Submission.APIKey) == "" {
		warnings = append(warnings, Warning{Message: "submission.api_key is empty; submit is unavailable"})
	}
	if strings.TrimSpace(cfg.Audio.Input) == "" {
		warnings = append(warnings, Warning{Message: "audio.input is empty; using the default source"})
	}

	return warnings, nil
}

func oneOf(key, value string, allowed []string) error {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %s", key, strings.Join(allowed, ", "))
}

func validBaseURL(key, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", key)
	}
	return nil
}
