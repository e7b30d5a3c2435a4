package github

import (
	"fmt"
	"strings"

	"github.com/ronwebb/ghinfer/internal/model/contract"
)

// toAPIMessages flattens the contract history onto the prose tool protocol:
// assistant tool calls are replayed as Action lines, tool results become
// user-role Observation messages the model reads back.
func toAPIMessages(messages []contract.Message) []apiMessage {
	out := make([]apiMessage, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case contract.RoleSystem:
			out = append(out, apiMessage{Role: "system", Content: m.Content})
		case contract.RoleUser:
			out = append(out, apiMessage{Role: "user", Content: m.Content})
		case contract.RoleAssistant:
			content := m.Content
			for _, tc := range m.ToolCalls {
				content += fmt.Sprintf("\n\nAction: %s\nAction Input: %s", tc.Name, normalizeInput(tc.Input))
			}
			out = append(out, apiMessage{Role: "assistant", Content: content})
		case contract.RoleTool:
			out = append(out, apiMessage{Role: "user", Content: "Observation: " + m.Content})
		}
	}

	return out
}

func normalizeInput(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "{}"
	}
	return s
}
