package github

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ronwebb/ghinfer/internal/model/contract"
)

const basePrompt = `You are a helpful assistant that must use the provided tools to solve problems.

IMPORTANT: You must use the available tools for any task that requires computation,
data retrieval, or external operations. Follow this exact pattern:

1. Analyze the user's request and identify which tools are needed
2. Use tools in this format:
   Action: tool_name
   Action Input: {"parameter": "value"}
3. Wait for the Observation: containing the tool result
4. If you need more information or want to use another tool, repeat steps 2-3
5. Once you have all needed information, provide your final answer

CRITICAL RULES:
- Never perform calculations manually - always use calculator tools
- Never guess or make up information - use search/retrieval tools
- Always wait for Observation: before proceeding
- You can use multiple tools in sequence to solve complex problems
- Format parameters correctly based on tool requirements
  (JSON, key-value pairs, or simple strings)`

const usageInstructions = `

Tool Usage Instructions:
- Format: Action: tool_name
- Next line: Action Input: {"param1": value1, "param2": value2}
- Alternative formats supported:
  * Simple string: Action Input: search query
  * Key-value: Action Input: query="search term", limit=5
  * Multi-line JSON is supported
- Wait for "Observation:" with the tool result before proceeding
- You can use multiple tools in sequence to solve complex problems`

// withToolPrompt makes the conversation tool-aware: when no system message
// leads the history, a full tool-describing system prompt is prepended;
// otherwise the tool descriptions are appended to the existing one.
func withToolPrompt(messages []apiMessage, tools []contract.ToolDef) []apiMessage {
	descriptions := buildToolDescriptions(tools)
	if descriptions == "" {
		return messages
	}

	if len(messages) == 0 || messages[0].Role != "system" {
		out := make([]apiMessage, 0, len(messages)+1)
		out = append(out, apiMessage{Role: "system", Content: basePrompt + descriptions})
		return append(out, messages...)
	}

	out := make([]apiMessage, len(messages))
	copy(out, messages)
	out[0].Content += descriptions
	return out
}

// buildToolDescriptions renders the declared tools into the prompt block
// the prose protocol relies on.
func buildToolDescriptions(tools []contract.ToolDef) string {
	if len(tools) == 0 {
		return ""
	}

	var lines []string
	for _, t := range tools {
		if t.Name == "" {
			continue
		}
		desc := fmt.Sprintf("- %s: %s", t.Name, t.Description)
		if params := describeParameters(t.Parameters); params != "" {
			desc += "\n  Parameters: " + params
		}
		lines = append(lines, desc)
	}
	if len(lines) == 0 {
		return ""
	}

	return fmt.Sprintf("\n\nAvailable tools:\n%s%s", strings.Join(lines, "\n"), usageInstructions)
}

// describeParameters flattens a JSON-schema properties map into
// "name (description), ..." lines. Property order is sorted so prompts are
// stable between calls.
func describeParameters(schema map[string]interface{}) string {
	if schema == nil {
		return ""
	}
	properties, ok := schema["properties"].(map[string]interface{})
	if !ok || len(properties) == 0 {
		return ""
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		part := name
		if info, ok := properties[name].(map[string]interface{}); ok {
			if desc, ok := info["description"].(string); ok && desc != "" {
				part += fmt.Sprintf(" (%s)", desc)
			}
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, ", ")
}
