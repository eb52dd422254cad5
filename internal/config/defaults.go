package config

// Default returns baseline configuration values before file overrides.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Input:            "default",
			Fallback:         "default",
			Backend:          "auto",
			SampleRate:       16000,
			Format:           "wav",
			VolumeIntervalMS: 50,
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
		},
		Submission: SubmissionConfig{
			Provider:  "anthropic",
			MaxTokens: 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// providerKeyEnv names the environment variable consulted when a provider's
// api_key is left empty.
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"groq":      "GROQ_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}
