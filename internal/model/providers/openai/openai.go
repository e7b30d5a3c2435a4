// Package openai adapts the completion contract onto any OpenAI-compatible
// chat endpoint using native function calling.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
	"github.com/ronwebb/ghinfer/internal/model/contract"

	"github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o"

// Options tunes an adapter instance. Temperature and MaxTokens act as
// instance defaults; per-request values win.
type Options struct {
	BaseURL     string
	Model       string
	Temperature *float32
	MaxTokens   int
	Timeout     time.Duration
}

// Provider is immutable after construction and safe for concurrent use.
type Provider struct {
	client      *openai.Client
	model       string
	temperature *float32
	maxTokens   int
}

func New(apiKey string, opts Options) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ghErrors.InvalidRequest("openai api key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}, nil
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    p.resolveModel(req.Model),
		Messages: toChatMessages(req.Messages),
		Tools:    toChatTools(req.Tools),
	}
	if temp := p.resolveTemperature(req.Temperature); temp != nil {
		chatReq.Temperature = *temp
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	} else if p.maxTokens > 0 {
		chatReq.MaxTokens = p.maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ghErrors.Protocol("response contains no choices")
	}

	choice := resp.Choices[0]
	result := &contract.CompletionResponse{Content: choice.Message.Content}

	for _, tc := range choice.Message.ToolCalls {
		id := tc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", len(result.ToolCalls))
		}
		result.ToolCalls = append(result.ToolCalls, &contract.ToolCall{
			ID:    id,
			Name:  tc.Function.Name,
			Input: tc.Function.Arguments,
		})
	}

	return result, nil
}

func (p *Provider) resolveModel(model string) string {
	if model == "" {
		return p.model
	}
	return model
}

func (p *Provider) resolveTemperature(reqTemp *float32) *float32 {
	if reqTemp != nil {
		return reqTemp
	}
	return p.temperature
}

func toChatMessages(messages []contract.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Input,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toChatTools(tools []contract.ToolDef) []openai.Tool {
	var out []openai.Tool
	for _, t := range tools {
		params := t.Parameters
		if params == nil {
			params = map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			}
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

// mapError translates go-openai failures onto the adapter taxonomy. API
// errors carry an HTTP status; anything else never reached the endpoint.
func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return ghErrors.WrapWithCategory(err, "openai request failed", categoryForStatus(apiErr.HTTPStatusCode))
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return ghErrors.WrapWithCategory(err, "openai request failed", categoryForStatus(reqErr.HTTPStatusCode))
	}

	return ghErrors.WrapWithCategory(err, "openai request failed", ghErrors.ErrTransport)
}

func categoryForStatus(status int) error {
	if category := ghErrors.FromStatusCode(status); category != nil {
		return category
	}
	return ghErrors.ErrProtocol
}
