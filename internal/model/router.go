package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ronwebb/ghinfer/internal/config"
	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
	"github.com/ronwebb/ghinfer/internal/logger"
	"github.com/ronwebb/ghinfer/internal/model/contract"
	anthropicProvider "github.com/ronwebb/ghinfer/internal/model/providers/anthropic"
	geminiProvider "github.com/ronwebb/ghinfer/internal/model/providers/gemini"
	githubProvider "github.com/ronwebb/ghinfer/internal/model/providers/github"
	huggingfaceProvider "github.com/ronwebb/ghinfer/internal/model/providers/huggingface"
	openaiProvider "github.com/ronwebb/ghinfer/internal/model/providers/openai"
)

// DefaultRouter implements Router over the configured model registry.
type DefaultRouter struct {
	cfg       config.ModelsConfig
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewRouter builds providers for every registry entry. Entries that fail to
// construct are skipped with a warning so one bad credential does not take
// the whole registry down.
func NewRouter(cfg config.ModelsConfig) (*DefaultRouter, error) {
	router := &DefaultRouter{
		cfg:       cfg,
		providers: make(map[string]Provider),
	}

	if err := router.initProviders(); err != nil {
		return nil, err
	}

	return router, nil
}

// Route dispatches a completion request to the provider registered under
// the given model name.
func (r *DefaultRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	traceID := logger.GetTraceID(ctx)

	slog.Info("Routing completion request", "model", model, "trace_id", traceID)

	provider, resolvedModel, err := r.resolveProvider(ctx, model)
	if err != nil {
		return nil, err
	}

	return r.executeWithFallback(ctx, resolvedModel, provider, req, traceID)
}

// ListModels returns all registered model names, sorted.
func (r *DefaultRouter) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.providers))
	for name := range r.providers {
		models = append(models, name)
	}
	sort.Strings(models)

	return models
}

func (r *DefaultRouter) initProviders() error {
	for _, entry := range r.cfg.Registry {
		provider, err := createProvider(entry)
		if err != nil {
			slog.Warn("Failed to create provider", "provider", entry.Provider, "model", entry.Name, "error", err)
			continue
		}

		r.providers[entry.Name] = provider
		slog.Info("Provider initialized", "name", entry.Name, "type", entry.Provider)
	}

	if len(r.providers) == 0 && len(r.cfg.Registry) > 0 {
		return ghErrors.InvalidRequest("no providers initialized from registry")
	}

	return nil
}

func (r *DefaultRouter) resolveProvider(ctx context.Context, model string) (Provider, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", ghErrors.Wrap(ctx.Err(), "provider resolution cancelled")
	default:
	}

	if model == "" {
		model = r.cfg.Default
	}

	r.mu.RLock()
	provider, exists := r.providers[model]
	r.mu.RUnlock()

	if exists {
		return provider, model, nil
	}

	slog.Warn("Model not found", "model", model)

	if r.cfg.Fallback != "" && model != r.cfg.Fallback {
		r.mu.RLock()
		fallback, ok := r.providers[r.cfg.Fallback]
		r.mu.RUnlock()
		if ok {
			slog.Info("Using fallback model", "model", model, "fallback", r.cfg.Fallback)
			return fallback, r.cfg.Fallback, nil
		}
	}

	return nil, "", ghErrors.NotFound(fmt.Sprintf("model %s not found", model))
}

// executeWithFallback retries the request against the fallback model when
// the primary fails. Credential and request-shape failures are not routing
// problems, so they surface immediately without a fallback attempt.
func (r *DefaultRouter) executeWithFallback(ctx context.Context, model string, provider Provider, req contract.CompletionRequest, traceID string) (*contract.CompletionResponse, error) {
	maxAttempts := r.cfg.MaxFallbackAttempts
	if maxAttempts < 1 {
		maxAttempts = config.DefaultModelMaxFallbackAttempts
	}

	currentModel := model
	currentProvider := provider
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ghErrors.Wrap(ctx.Err(), "request execution cancelled")
		default:
		}

		resp, err := currentProvider.Generate(ctx, req)
		if err == nil {
			slog.Info("Request completed", "model", currentModel, "attempt", attempt+1, "trace_id", traceID)
			return resp, nil
		}
		lastErr = err

		slog.Error("Provider request failed", "model", currentModel, "attempt", attempt+1, "error", err, "trace_id", traceID)

		if errors.Is(err, ghErrors.ErrAuth) || errors.Is(err, ghErrors.ErrInvalidRequest) {
			return nil, err
		}

		if r.cfg.Fallback == "" || currentModel == r.cfg.Fallback {
			break
		}

		r.mu.RLock()
		fallback, exists := r.providers[r.cfg.Fallback]
		r.mu.RUnlock()
		if !exists {
			return nil, ghErrors.NotFound(fmt.Sprintf("fallback model %s not found", r.cfg.Fallback))
		}

		slog.Info("Attempting fallback", "from", currentModel, "to", r.cfg.Fallback)
		currentModel = r.cfg.Fallback
		currentProvider = fallback
	}

	return nil, ghErrors.Wrap(lastErr, "provider request failed")
}

// createProvider builds a provider instance from a registry entry. The
// entry's sampling fields become the instance defaults; per-request values
// still win at call time.
func createProvider(entry config.ModelRegistry) (Provider, error) {
	timeout, err := config.DurationOrDefault(entry.RequestTimeout, config.DefaultRequestTimeout)
	if err != nil {
		return nil, ghErrors.InvalidRequest(fmt.Sprintf("invalid request_timeout for model %s: %v", entry.Name, err))
	}

	var temperature *float32
	if entry.Temperature > 0 {
		t := entry.Temperature
		temperature = &t
	}

	switch entry.Provider {
	case "github":
		return githubProvider.New(entry.APIKey, githubProvider.Options{
			BaseURL:     entry.BaseURL,
			Model:       entry.Model,
			Temperature: temperature,
			MaxTokens:   entry.MaxTokens,
			Timeout:     timeout,
			MaxRetries:  entry.MaxRetries,
		})

	case "openai":
		if entry.APIKey == "" {
			return nil, ghErrors.InvalidRequest("API key required for OpenAI provider")
		}
		return openaiProvider.New(entry.APIKey, openaiProvider.Options{
			BaseURL:     entry.BaseURL,
			Model:       entry.Model,
			Temperature: temperature,
			MaxTokens:   entry.MaxTokens,
			Timeout:     timeout,
		})

	case "ollama":
		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = config.DefaultOllamaAPIKey
		}
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOllamaBaseURL
		}
		return openaiProvider.New(apiKey, openaiProvider.Options{
			BaseURL:     baseURL,
			Model:       entry.Model,
			Temperature: temperature,
			MaxTokens:   entry.MaxTokens,
			Timeout:     timeout,
		})

	case "huggingface":
		return huggingfaceProvider.New(entry.APIKey, huggingfaceProvider.Options{
			BaseURL:     entry.BaseURL,
			Model:       entry.Model,
			Temperature: temperature,
			MaxTokens:   entry.MaxTokens,
			Timeout:     timeout,
		})

	case "anthropic":
		if entry.APIKey == "" {
			return nil, ghErrors.InvalidRequest("API key required for Anthropic provider")
		}
		return anthropicProvider.New(entry.APIKey, anthropicProvider.Options{
			Model:       entry.Model,
			Temperature: temperature,
			MaxTokens:   entry.MaxTokens,
		})

	case "gemini":
		if entry.APIKey == "" {
			return nil, ghErrors.InvalidRequest("API key required for Gemini provider")
		}
		return geminiProvider.New(entry.APIKey, geminiProvider.Options{
			Model:       entry.Model,
			Temperature: temperature,
			MaxTokens:   entry.MaxTokens,
		})

	default:
		return nil, ghErrors.InvalidRequest(fmt.Sprintf("unknown provider type: %s", entry.Provider))
	}
}
