package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rbright/loop/internal/entry"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"

	anthropicVersion = "2023-06-01"

	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultMaxTokens      = 1024
)

// SubmitOptions are shared by every language-model client.
type SubmitOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
	MaxTokens    int
}

func (o SubmitOptions) withDefaults(model, baseURL string) SubmitOptions {
	if o.Model == "" {
		o.Model = model
	}
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	return o
}

// postJSON sends one JSON request and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, name, url string, headers map[string]string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &entry.SubmissionError{Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &entry.SubmissionError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &entry.SubmissionError{
			Message: fmt.Sprintf("Could not reach %s.", name),
			Err:     fmt.Errorf("sending request: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		message, ferr := readFailure(name, resp)
		return &entry.SubmissionError{Status: resp.StatusCode, Message: message, Err: ferr}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &entry.SubmissionError{Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func emptyReply(name string) error {
	return &entry.SubmissionError{Status: http.StatusOK, Err: fmt.Errorf("empty response from %s", name)}
}

// AnthropicSubmitter calls the Messages API.
type AnthropicSubmitter struct {
	opts       SubmitOptions
	httpClient *http.Client
}

func NewAnthropicSubmitter(opts SubmitOptions) *AnthropicSubmitter {
	return &AnthropicSubmitter{
		opts:       opts.withDefaults(defaultAnthropicModel, anthropicBaseURL),
		httpClient: newHTTPClient(),
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (s *AnthropicSubmitter) Name() string { return "anthropic" }

func (s *AnthropicSubmitter) Submit(ctx context.Context, text string) (string, error) {
	req := anthropicRequest{
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
		System:    s.opts.SystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: text}},
	}
	headers := map[string]string{
		"x-api-key":         s.opts.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var result anthropicResponse
	if err := postJSON(ctx, s.httpClient, s.Name(), s.opts.BaseURL+"/messages", headers, req, &result); err != nil {
		return "", err
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "" || block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	reply := strings.TrimSpace(strings.Join(parts, ""))
	if reply == "" {
		return "", emptyReply(s.Name())
	}
	return reply, nil
}

// OpenAISubmitter calls the Chat Completions API.
type OpenAISubmitter struct {
	opts       SubmitOptions
	httpClient *http.Client
}

func NewOpenAISubmitter(opts SubmitOptions) *OpenAISubmitter {
	return &OpenAISubmitter{
		opts:       opts.withDefaults(defaultOpenAIModel, openAIBaseURL),
		httpClient: newHTTPClient(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *OpenAISubmitter) Name() string { return "openai" }

func (s *OpenAISubmitter) Submit(ctx context.Context, text string) (string, error) {
	var messages []chatMessage
	if s.opts.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: s.opts.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: text})

	req := chatRequest{Model: s.opts.Model, Messages: messages, MaxTokens: s.opts.MaxTokens}
	headers := map[string]string{"Authorization": "Bearer " + s.opts.APIKey}

	var result chatResponse
	if err := postJSON(ctx, s.httpClient, s.Name(), s.opts.BaseURL+"/chat/completions", headers, req, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", emptyReply(s.Name())
	}
	reply := strings.TrimSpace(result.Choices[0].Message.Content)
	if reply == "" {
		return "", emptyReply(s.Name())
	}
	return reply, nil
}

// GeminiSubmitter calls generateContent.
type GeminiSubmitter struct {
	opts       SubmitOptions
	httpClient *http.Client
}

func NewGeminiSubmitter(opts SubmitOptions) *GeminiSubmitter {
	return &GeminiSubmitter{
		opts:       opts.withDefaults(defaultGeminiModel, geminiBaseURL),
		httpClient: newHTTPClient(),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (s *GeminiSubmitter) Name() string { return "gemini" }

func (s *GeminiSubmitter) Submit(ctx context.Context, text string) (string, error) {
	req := geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
		GenerationConfig: geminiGenerationConfig{MaxOutputTokens: s.opts.MaxTokens},
	}
	if s.opts.SystemPrompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: s.opts.SystemPrompt}}}
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", s.opts.BaseURL, s.opts.Model)
	headers := map[string]string{"x-goog-api-key": s.opts.APIKey}

	var result geminiResponse
	if err := postJSON(ctx, s.httpClient, s.Name(), url, headers, req, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 {
		return "", emptyReply(s.Name())
	}
	var parts []string
	for _, p := range result.Candidates[0].Content.Parts {
		parts = append(parts, p.Text)
	}
	reply := strings.TrimSpace(strings.Join(parts, ""))
	if reply == "" {
		return "", emptyReply(s.Name())
	}
	return reply, nil
}
