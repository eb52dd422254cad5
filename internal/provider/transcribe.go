package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/rbright/loop/internal/audio"
	"github.com/rbright/loop/internal/entry"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	groqBaseURL   = "https://api.groq.com/openai/v1"

	defaultOpenAITranscribeModel = "gpt-4o-transcribe"
	defaultGroqTranscribeModel   = "whisper-large-v3-turbo"

	noSpeechMessage = "No speech recognized."
)

// Transcriber uploads recordings to an OpenAI-compatible /audio/transcriptions endpoint.
type Transcriber struct {
	name       string
	apiKey     string
	model      string
	language   string
	baseURL    string
	httpClient *http.Client
}

var _ entry.Transcriber = (*Transcriber)(nil)

func NewOpenAITranscriber(apiKey, model, language string) *Transcriber {
	return NewTranscriberWithURL("openai", apiKey, model, language, openAIBaseURL)
}

func NewGroqTranscriber(apiKey, model, language string) *Transcriber {
	return NewTranscriberWithURL("groq", apiKey, model, language, groqBaseURL)
}

// NewTranscriberWithURL builds a client for any OpenAI-compatible server.
func NewTranscriberWithURL(name, apiKey, model, language, baseURL string) *Transcriber {
	if model == "" {
		model = defaultOpenAITranscribeModel
		if name == "groq" {
			model = defaultGroqTranscribeModel
		}
	}
	return &Transcriber{
		name:       name,
		apiKey:     apiKey,
		model:      model,
		language:   language,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

func (t *Transcriber) Name() string { return t.name }

func (t *Transcriber) Transcribe(ctx context.Context, payload entry.Payload) (string, error) {
	if len(payload.Data) == 0 {
		return "", &entry.TranscriptionError{Message: "No audio to transcribe."}
	}

	body, contentType, err := t.form(payload)
	if err != nil {
		return "", &entry.TranscriptionError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", &entry.TranscriptionError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", &entry.TranscriptionError{
			Message: fmt.Sprintf("Could not reach %s.", t.name),
			Err:     fmt.Errorf("sending request: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		message, ferr := readFailure(t.name, resp)
		return "", &entry.TranscriptionError{Message: message, Err: ferr}
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &entry.TranscriptionError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	text := normalizeWhitespace(result.Text)
	if text == "" {
		return "", &entry.TranscriptionError{Message: noSpeechMessage}
	}
	return text, nil
}

func (t *Transcriber) form(payload entry.Payload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	format := payload.Format
	if format == "" {
		format = audio.FormatWAV
	}
	part, err := writer.CreatePart(fileHeader("audio."+format, audio.MIMEType(format)))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(payload.Data); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}

	fields := [][2]string{{"model", t.model}, {"response_format", "json"}}
	if t.language != "" {
		fields = append(fields, [2]string{"language", t.language})
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("writing %s field: %w", field[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

func fileHeader(filename, contentType string) textproto.MIMEHeader {
	return textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)},
		"Content-Type":        {contentType},
	}
}
