package entry

import (
	"context"
	"errors"
)

const (
	defaultSubmitMessage     = "The server could not process the request."
	defaultTranscribeMessage = "Transcription failed."
	noAudioMessage           = "No audio to transcribe."
	timeoutMessage           = "The request timed out."
)

// DeviceError reports that the microphone could not be started or stopped.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return "audio device unavailable"
	}
	return "audio device: " + e.Err.Error()
}

func (e *DeviceError) Unwrap() error { return e.Err }

// TranscriptionError reports a failed speech-to-text call.
type TranscriptionError struct {
	Message string
	Err     error
}

func (e *TranscriptionError) Error() string {
	return describe(e.Message, e.Err, defaultTranscribeMessage)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// SubmissionError reports a failed submission. Status is the remote HTTP status when known.
type SubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return describe(e.Message, e.Err, defaultSubmitMessage)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func describe(message string, err error, fallback string) string {
	if message != "" {
		return message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// userMessage picks the text shown inline for a failure.
func userMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
