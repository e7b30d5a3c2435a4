// Package anthropic adapts the completion contract onto the Anthropic
// Messages API. System messages are lifted out of the history into the
// dedicated system field; tool traffic maps onto tool_use / tool_result
// content blocks.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
	"github.com/ronwebb/ghinfer/internal/model/contract"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// The Messages API requires max_tokens; this is the value used when neither
// the registry entry nor the request sets one.
const DefaultMaxTokens = 1024

type Options struct {
	Model       string
	Temperature *float32
	MaxTokens   int
}

type Provider struct {
	client      anthropic.Client
	model       string
	temperature *float32
	maxTokens   int
}

func New(apiKey string, opts Options) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, ghErrors.InvalidRequest("anthropic api key is required")
	}

	model := opts.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_0)
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Provider{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

func (p *Provider) Name() string {
	return "anthropic"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	system, messages := splitMessages(req.Messages)

	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
		Tools:     toTools(req.Tools),
	}
	if len(system) > 0 {
		params.System = system
	}
	if temp := p.resolveTemperature(req.Temperature); temp != nil {
		params.Temperature = anthropic.Float(float64(*temp))
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &contract.CompletionResponse{}
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Content += b.Text
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(b.Input)
			resp.ToolCalls = append(resp.ToolCalls, &contract.ToolCall{
				ID:    b.ID,
				Name:  b.Name,
				Input: string(inputJSON),
			})
		}
	}

	return resp, nil
}

func (p *Provider) resolveTemperature(reqTemp *float32) *float32 {
	if reqTemp != nil {
		return reqTemp
	}
	return p.temperature
}

// splitMessages lifts system messages into the system prompt blocks and
// maps the rest onto Messages API turns. Assistant tool calls are replayed
// as tool_use blocks so follow-up turns keep the pairing the API expects.
func splitMessages(in []contract.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, m := range in {
		switch m.Role {
		case contract.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case contract.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, json.RawMessage(tc.Input), tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		case contract.RoleTool:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	return system, messages
}

func toTools(defs []contract.ToolDef) []anthropic.ToolUnionParam {
	var tools []anthropic.ToolUnionParam
	for _, t := range defs {
		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{Properties: map[string]interface{}{}},
		}
		if t.Parameters != nil {
			if props, ok := t.Parameters["properties"].(map[string]interface{}); ok {
				tool.InputSchema = anthropic.ToolInputSchemaParam{Properties: props}
			}
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return tools
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		category := ghErrors.FromStatusCode(apiErr.StatusCode)
		if category == nil {
			category = ghErrors.ErrProtocol
		}
		return ghErrors.WrapWithCategory(err, "anthropic request failed", category)
	}
	return ghErrors.WrapWithCategory(err, "anthropic request failed", ghErrors.ErrTransport)
}
