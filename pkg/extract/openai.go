package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o"
	defaultTemperature = 0.1

	// maxPageChars bounds the page text included in the prompt so a large
	// page cannot blow the model's context window.
	maxPageChars = 48_000
)

// OpenAIExtractor extracts structured records from pages via the OpenAI
// chat-completions API. The zero value is not usable; construct with
// NewOpenAIExtractor.
type OpenAIExtractor struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
	fetcher     Fetcher
}

// OpenAIOption configures the extractor.
type OpenAIOption func(*OpenAIExtractor)

// WithModel overrides the model name (default gpt-4o).
func WithModel(model string) OpenAIOption {
	return func(e *OpenAIExtractor) { e.model = model }
}

// WithTemperature overrides the sampling temperature (default 0.1).
func WithTemperature(t float64) OpenAIOption {
	return func(e *OpenAIExtractor) { e.temperature = t }
}

// WithBaseURL points the client at a different API endpoint. Used by tests
// and OpenAI-compatible gateways.
func WithBaseURL(u string) OpenAIOption {
	return func(e *OpenAIExtractor) { e.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(e *OpenAIExtractor) { e.httpClient = c }
}

// WithFetcher overrides how page content is retrieved (default HTTPFetcher).
func WithFetcher(f Fetcher) OpenAIOption {
	return func(e *OpenAIExtractor) { e.fetcher = f }
}

// NewOpenAIExtractor creates an extractor authenticated with apiKey.
func NewOpenAIExtractor(apiKey string, opts ...OpenAIOption) *OpenAIExtractor {
	e := &OpenAIExtractor{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		temperature: defaultTemperature,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		fetcher:     NewHTTPFetcher(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Extract fetches the page and asks the model to apply the instruction to
// its content, returning the decoded JSON object. A non-object reply is
// preserved under the "raw_output" key rather than rejected.
func (e *OpenAIExtractor) Extract(ctx context.Context, url, instruction string) (Record, error) {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(page) > maxPageChars {
		page = page[:maxPageChars]
	}

	reqBody := chatRequest{
		Model:          e.model,
		Temperature:    e.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a web data extraction assistant. Apply the user's instruction to the page content and respond with a single JSON object.",
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("%s\n\nPage URL: %s\n\nPage content:\n%s", instruction, url, page),
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read model response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("model error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model call failed: status %s", resp.Status)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	content := parsed.Choices[0].Message.Content
	var rec Record
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		// The model ignored the JSON instruction; keep the raw text.
		return Record{"raw_output": content}, nil
	}
	return rec, nil
}
