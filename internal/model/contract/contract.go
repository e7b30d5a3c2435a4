// Package contract defines the provider-neutral completion types. Messages
// are immutable once constructed; providers translate them to and from each
// backend's wire format.
package contract

import (
	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
)

// Message roles. The role set is closed; serialization boundaries switch
// over it exhaustively.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Message struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	ToolCalls  []*ToolCall `json:"tool_calls,omitempty"`
}

// ToolDef declares a tool the model may invoke. Parameters holds a JSON
// schema object ({"type":"object","properties":{...}}).
type ToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// CompletionRequest carries one conversation turn. Temperature and
// MaxTokens override the provider's configured defaults when set.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Tools       []ToolDef `json:"tools,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// CompletionResponse is the outcome of one completion call. A non-empty
// ToolCalls slice means the model requested tool invocations; every
// ToolCall.ID must be echoed back in a RoleTool message before the next
// call in the same conversation turn. Otherwise Content is the terminal
// assistant answer.
type CompletionResponse struct {
	Content   string      `json:"content"`
	ToolCalls []*ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is one requested tool invocation. Input is a JSON object string.
type ToolCall struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Input string `json:"input"`
}

// Validate checks the completion contract preconditions: a non-empty
// history opening with a system or user message, legal roles throughout,
// and tool messages carrying the call ID they answer.
func (r CompletionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return ghErrors.InvalidRequest("message history is empty")
	}

	if first := r.Messages[0].Role; first != RoleSystem && first != RoleUser {
		return ghErrors.InvalidRequest("history must begin with a system or user message")
	}

	for _, m := range r.Messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		case RoleTool:
			if m.ToolCallID == "" {
				return ghErrors.InvalidRequest("tool message is missing tool_call_id")
			}
		default:
			return ghErrors.InvalidRequest("unknown message role " + m.Role)
		}
	}

	return nil
}
