// Package github implements the chat-model adapter for the GitHub Models
// inference endpoint. The wire format is OpenAI-compatible JSON, but tool
// calling is adapted through a prose protocol: declared tools are described
// in the system prompt, the model requests invocations with Action /
// Action Input lines, and tool results flow back as Observation messages.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
	"github.com/ronwebb/ghinfer/internal/model/contract"
)

const (
	DefaultBaseURL = "https://models.github.ai/inference/chat/completions"
	DefaultModel   = "openai/gpt-4o"

	// Documented defaults for the adapter's sampling and transport knobs.
	DefaultTemperature = float32(0.7)
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3

	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"
)

// Options tunes an adapter instance. Zero values fall back to the
// documented defaults above.
type Options struct {
	BaseURL     string
	Model       string
	Temperature *float32
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

// Provider is safe for concurrent use: all fields are set at construction
// and never mutated, so any number of completions may be in flight.
type Provider struct {
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	maxRetries  int
	header      http.Header
	client      *http.Client
}

// New builds an adapter. The token is the only credential; when empty it is
// read from GITHUB_TOKEN once, here, never per call.
func New(token string, opts Options) (*Provider, error) {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, ghErrors.InvalidRequest("github token is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Accept", acceptHeader)
	header.Set("Content-Type", "application/json")
	header.Set("X-GitHub-Api-Version", apiVersion)

	return &Provider{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		temperature: temperature,
		maxTokens:   opts.MaxTokens,
		maxRetries:  maxRetries,
		header:      header,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

func (p *Provider) Name() string {
	return "github"
}

type chatRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	Temperature *float32     `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message responseMessage `json:"message"`
}

// responseMessage decodes content as a pointer so an absent field is
// distinguishable from an empty string.
type responseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Generate performs one completion call. It holds no state between calls;
// the outcome is either a terminal assistant message or a set of tool-call
// requests extracted from the prose protocol.
func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	messages := toAPIMessages(req.Messages)
	if len(req.Tools) > 0 {
		messages = withToolPrompt(messages, req.Tools)
	}

	temperature := p.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	payload := chatRequest{
		Model:       p.resolveModel(req.Model),
		Messages:    messages,
		Stream:      false,
		Temperature: &temperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ghErrors.WrapWithCategory(err, "encode request", ghErrors.ErrInvalidRequest)
	}

	raw, err := p.post(ctx, body)
	if err != nil {
		return nil, err
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, ghErrors.WrapWithCategory(err, "decode response", ghErrors.ErrProtocol)
	}
	if len(decoded.Choices) == 0 {
		return nil, ghErrors.Protocol("response contains no choices")
	}
	if decoded.Choices[0].Message.Content == nil {
		return nil, ghErrors.Protocol("response message has no content")
	}

	content := *decoded.Choices[0].Message.Content
	return &contract.CompletionResponse{
		Content:   content,
		ToolCalls: extractToolCalls(content),
	}, nil
}

func (p *Provider) resolveModel(model string) string {
	if model == "" {
		return p.model
	}
	return model
}

func (p *Provider) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, ghErrors.WrapWithCategory(err, "build request", ghErrors.ErrInvalidRequest)
	}
	httpReq.Header = p.header.Clone()
	return httpReq, nil
}
