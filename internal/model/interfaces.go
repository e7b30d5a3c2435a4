package model

import (
	"context"

	"github.com/ronwebb/ghinfer/internal/model/contract"
)

// Provider is one chat-model adapter. Implementations hold no per-request
// state; a single instance serves any number of concurrent Generate calls.
type Provider interface {
	// Generate performs one completion exchange. The response carries either
	// terminal assistant content or a set of requested tool calls.
	Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)

	// Name returns the provider type identifier.
	Name() string
}

// Router dispatches completion requests to registered providers by model
// name, with optional fallback.
type Router interface {
	Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error)
	ListModels() []string
}
