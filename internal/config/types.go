// Package config resolves, parses, validates, and defaults loop configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by loop.
type Config struct {
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Submission    SubmissionConfig    `yaml:"submission"`
	Timeouts      TimeoutConfig       `yaml:"timeouts"`
	Output        OutputConfig        `yaml:"output"`
	Log           LogConfig           `yaml:"log"`
	Debug         DebugConfig         `yaml:"debug"`
	Doctor        DoctorConfig        `yaml:"doctor"`
}

// AudioConfig controls capture backend, device selection, and payload encoding.
type AudioConfig struct {
	Input            string `yaml:"input"`
	Fallback         string `yaml:"fallback"`
	Backend          string `yaml:"backend"`
	SampleRate       int    `yaml:"sample_rate"`
	Format           string `yaml:"format"`
	VolumeIntervalMS int    `yaml:"volume_interval_ms"`
}

// VolumeInterval is the meter sampling period.
func (a AudioConfig) VolumeInterval() time.Duration {
	return time.Duration(a.VolumeIntervalMS) * time.Millisecond
}

// TranscriptionConfig selects the speech-to-text provider.
type TranscriptionConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	BaseURL  string `yaml:"base_url"`
}

// SubmissionConfig selects the model that answers submitted text.
type SubmissionConfig struct {
	Provider     string `yaml:"provider"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	SystemPrompt string `yaml:"system_prompt"`
	MaxTokens    int    `yaml:"max_tokens"`
}

// TimeoutConfig bounds service calls. Zero disables the deadline.
type TimeoutConfig struct {
	SubmitMS     int `yaml:"submit_ms"`
	TranscribeMS int `yaml:"transcribe_ms"`
}

func (t TimeoutConfig) Submit() time.Duration {
	return time.Duration(t.SubmitMS) * time.Millisecond
}

func (t TimeoutConfig) Transcribe() time.Duration {
	return time.Duration(t.TranscribeMS) * time.Millisecond
}

// OutputConfig controls where successful replies go besides the view.
type OutputConfig struct {
	CopyReply bool `yaml:"copy_reply"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DebugConfig toggles optional debug artifacts.
type DebugConfig struct {
	AudioDump bool `yaml:"audio_dump"`
}

// DoctorConfig holds optional readiness probes.
type DoctorConfig struct {
	// GRPCHealth is a host:port serving grpc.health.v1, for self-hosted
	// transcription endpoints.
	GRPCHealth string `yaml:"grpc_health"`
}

// Warning is a non-fatal config issue surfaced to users.
type Warning struct {
	Line    int
	Message string
}
