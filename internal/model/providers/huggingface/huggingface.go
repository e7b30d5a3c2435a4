// Package huggingface routes completions through the Hugging Face inference
// router, which speaks the OpenAI wire format. The adapter composes the
// openai provider with the router endpoint and HF credential conventions.
package huggingface

import (
	"context"
	"os"
	"time"

	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
	"github.com/ronwebb/ghinfer/internal/model/contract"
	openaiProvider "github.com/ronwebb/ghinfer/internal/model/providers/openai"
)

const (
	DefaultBaseURL = "https://router.huggingface.co/v1"
	DefaultModel   = "meta-llama/Llama-3.1-8B-Instruct"
)

type Options struct {
	BaseURL     string
	Model       string
	Temperature *float32
	MaxTokens   int
	Timeout     time.Duration
}

type Provider struct {
	inner *openaiProvider.Provider
}

// New builds the adapter. The token falls back to HF_TOKEN, read once here.
func New(token string, opts Options) (*Provider, error) {
	if token == "" {
		token = os.Getenv("HF_TOKEN")
	}
	if token == "" {
		return nil, ghErrors.InvalidRequest("hugging face token is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	inner, err := openaiProvider.New(token, openaiProvider.Options{
		BaseURL:     baseURL,
		Model:       model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Timeout:     opts.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &Provider{inner: inner}, nil
}

func (p *Provider) Name() string {
	return "huggingface"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	return p.inner.Generate(ctx, req)
}
