package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rbright/loop/internal/config"
	"github.com/rbright/loop/internal/entry"
)

// TranscriberFromConfig builds the configured speech-to-text client.
func TranscriberFromConfig(cfg config.TranscriptionConfig) (*Transcriber, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if err := requireKey(name, cfg.APIKey); err != nil {
		return nil, err
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	switch name {
	case "openai":
		if baseURL == "" {
			baseURL = openAIBaseURL
		}
	case "groq":
		if baseURL == "" {
			baseURL = groqBaseURL
		}
	default:
		return nil, fmt.Errorf("unsupported transcription provider %q", cfg.Provider)
	}
	return NewTranscriberWithURL(name, cfg.APIKey, cfg.Model, cfg.Language, baseURL), nil
}

// SubmitterFromConfig builds the configured language-model client.
func SubmitterFromConfig(cfg config.SubmissionConfig) (entry.Submitter, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if err := requireKey(name, cfg.APIKey); err != nil {
		return nil, err
	}

	opts := SubmitOptions{
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		BaseURL:      strings.TrimSpace(cfg.BaseURL),
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
	}
	switch name {
	case "anthropic":
		return NewAnthropicSubmitter(opts), nil
	case "openai":
		return NewOpenAISubmitter(opts), nil
	case "gemini":
		return NewGeminiSubmitter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported submission provider %q", cfg.Provider)
	}
}

// FromConfig builds both clients. A service whose construction fails is
// returned as nil alongside the joined errors, so callers can still run
// with the other one.
func FromConfig(cfg config.Config) (entry.Transcriber, entry.Submitter, error) {
	var (
		transcriber entry.Transcriber
		errs        []error
	)
	if t, err := TranscriberFromConfig(cfg.Transcription); err != nil {
		errs = append(errs, fmt.Errorf("transcription: %w", err))
	} else {
		transcriber = t
	}

	submitter, err := SubmitterFromConfig(cfg.Submission)
	if err != nil {
		errs = append(errs, fmt.Errorf("submission: %w", err))
	}
	return transcriber, submitter, errors.Join(errs...)
}

// Endpoints lists the base URLs the configured providers will call.
func Endpoints(cfg config.Config) []string {
	transcription := strings.TrimSpace(cfg.Transcription.BaseURL)
	if transcription == "" {
		transcription = openAIBaseURL
		if strings.EqualFold(strings.TrimSpace(cfg.Transcription.Provider), "groq") {
			transcription = groqBaseURL
		}
	}

	submission := strings.TrimSpace(cfg.Submission.BaseURL)
	if submission == "" {
		switch strings.ToLower(strings.TrimSpace(cfg.Submission.Provider)) {
		case "openai":
			submission = openAIBaseURL
		case "gemini":
			submission = geminiBaseURL
		default:
			submission = anthropicBaseURL
		}
	}
	return []string{transcription, submission}
}
