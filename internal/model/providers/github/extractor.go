package github

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ronwebb/ghinfer/internal/model/contract"
)

// extractToolCalls scans completion prose for Action / Action Input pairs
// and turns them into structured tool calls. IDs are minted as call_0..n in
// order of appearance; the caller echoes them back on the matching tool
// result messages. Returns nil when the content carries no tool request.
func extractToolCalls(content string) []*contract.ToolCall {
	if !strings.Contains(content, "Action:") || !strings.Contains(content, "Action Input:") {
		return nil
	}

	var calls []*contract.ToolCall
	lines := strings.Split(content, "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "Action:") {
			i++
			continue
		}

		name := strings.TrimSpace(strings.TrimPrefix(line, "Action:"))
		input, next := extractActionInput(lines, i+1)
		i = next

		if name == "" || input == "" {
			continue
		}

		args := parseToolInput(input)
		encoded, err := json.Marshal(args)
		if err != nil {
			encoded = []byte("{}")
		}

		calls = append(calls, &contract.ToolCall{
			ID:    fmt.Sprintf("call_%d", len(calls)),
			Name:  name,
			Input: string(encoded),
		})
	}

	return calls
}

// extractActionInput finds the Action Input line following an Action line
// and collects continuation lines until a stop marker.
func extractActionInput(lines []string, start int) (string, int) {
	i := start
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "Action Input:") {
			input := strings.TrimSpace(strings.TrimPrefix(line, "Action Input:"))
			return extractMultilineInput(lines, i+1, input)
		}
		i++
	}
	return "", i
}

func extractMultilineInput(lines []string, start int, initial string) (string, int) {
	input := initial
	i := start

	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if isStopLine(line) {
			break
		}
		if input != "" && !strings.HasSuffix(input, "\n") {
			input += "\n"
		}
		input += line
		i++
	}

	return input, i
}

func isStopLine(line string) bool {
	return line == "" ||
		strings.HasPrefix(line, "Action:") ||
		strings.HasPrefix(line, "Observation:") ||
		strings.HasPrefix(line, "Final Answer:")
}
