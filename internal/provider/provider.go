// Package provider implements the speech-to-text and language-model HTTP clients.
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrMissingAPIKey is returned when a provider is configured without a key.
var ErrMissingAPIKey = errors.New("missing API key")

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// newHTTPClient has no client-level timeout; deadlines come from the request context.
func newHTTPClient() *http.Client {
	return &http.Client{}
}

// remoteError extracts a human-readable message from a non-2xx response body.
// OpenAI, Groq, Anthropic and Gemini all nest it under error.message.
func remoteError(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil && detail.Message != "" {
		return strings.TrimSpace(detail.Message)
	}

	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		return strings.TrimSpace(plain)
	}
	return ""
}

// readFailure reads a bounded failure body and formats the diagnostic error.
func readFailure(name string, resp *http.Response) (string, error) {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return remoteError(body), fmt.Errorf("%s API error %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func requireKey(name string, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%s: %w", name, ErrMissingAPIKey)
	}
	return nil
}
