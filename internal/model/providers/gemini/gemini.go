// Package gemini adapts the completion contract onto the Gemini API.
// System messages become the system instruction; tool declarations and
// function call/response parts carry the tool traffic.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
	"github.com/ronwebb/ghinfer/internal/model/contract"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type Options struct {
	Model       string
	Temperature *float32
	MaxTokens   int
}

type Provider struct {
	client      *genai.Client
	model       string
	temperature *float32
	maxTokens   int
}

func New(apiKey string, opts Options) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, ghErrors.InvalidRequest("gemini api key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, ghErrors.WrapWithCategory(err, "create gemini client", ghErrors.ErrTransport)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client:      client,
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{Tools: toTools(req.Tools)}

	contents, system := toContents(req.Messages)
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if temp := p.resolveTemperature(req.Temperature); temp != nil {
		cfg.Temperature = genai.Ptr[float32](*temp)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	} else if p.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.maxTokens)
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, mapError(err)
	}

	out := &contract.CompletionResponse{}
	if resp == nil {
		return nil, ghErrors.Protocol("empty gemini response")
	}

	for _, fc := range resp.FunctionCalls() {
		argsJSON, _ := json.Marshal(fc.Args)
		id := fc.ID
		if id == "" {
			id = fc.Name
		}
		out.ToolCalls = append(out.ToolCalls, &contract.ToolCall{
			ID:    id,
			Name:  fc.Name,
			Input: string(argsJSON),
		})
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				out.Content += part.Text
			}
		}
	}

	return out, nil
}

func (p *Provider) resolveTemperature(reqTemp *float32) *float32 {
	if reqTemp != nil {
		return reqTemp
	}
	return p.temperature
}

// toContents maps history onto Gemini turns. System content is pulled out
// for the system instruction; tool results ride as function responses keyed
// by the original call name.
func toContents(messages []contract.Message) ([]*genai.Content, string) {
	var contents []*genai.Content
	system := ""

	callNames := map[string]string{}
	for _, m := range messages {
		for _, tc := range m.ToolCalls {
			callNames[tc.ID] = tc.Name
		}
	}

	for _, m := range messages {
		switch m.Role {
		case contract.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case contract.RoleAssistant:
			parts := []*genai.Part{}
			if m.Content != "" {
				parts = append(parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				var args map[string]any
				_ = json.Unmarshal([]byte(tc.Input), &args)
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: args,
				}})
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		case contract.RoleTool:
			name := callNames[m.ToolCallID]
			if name == "" {
				name = m.ToolCallID
			}
			response := map[string]any{}
			if err := json.Unmarshal([]byte(m.Content), &response); err != nil {
				response = map[string]any{"output": m.Content}
			}
			contents = append(contents, &genai.Content{Role: "function", Parts: []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					ID:       m.ToolCallID,
					Name:     name,
					Response: response,
				},
			}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}

	return contents, system
}

func toTools(defs []contract.ToolDef) []*genai.Tool {
	if len(defs) == 0 {
		return nil
	}

	var decls []*genai.FunctionDeclaration
	for _, t := range defs {
		var schema *genai.Schema
		if t.Parameters != nil {
			b, _ := json.Marshal(t.Parameters)
			schema = &genai.Schema{}
			_ = json.Unmarshal(b, schema)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schema,
		})
	}

	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		category := ghErrors.FromStatusCode(apiErr.Code)
		if category == nil {
			category = ghErrors.ErrProtocol
		}
		return ghErrors.WrapWithCategory(err, "gemini request failed", category)
	}
	return ghErrors.WrapWithCategory(err, "gemini request failed", ghErrors.ErrTransport)
}
