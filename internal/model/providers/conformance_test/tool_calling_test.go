package conformance_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ronwebb/ghinfer/internal/model/contract"
	githubProvider "github.com/ronwebb/ghinfer/internal/model/providers/github"
)

type wireRequest struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func reply(w http.ResponseWriter, content string) {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	w.Write(body)
}

// A full tool exchange: the first round yields a tool call, the caller
// echoes its ID back on a tool message, and the second round must see the
// result before producing the terminal answer.
func TestToolCallMustBeFollowedByToolResultMessage(t *testing.T) {
	var rounds []wireRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req wireRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		rounds = append(rounds, req)

		if len(rounds) == 1 {
			reply(w, "Action: exec_command\nAction Input: {\"cmd\": \"echo hello\"}")
			return
		}
		reply(w, "Final Answer: done")
	}))
	defer srv.Close()

	p, err := githubProvider.New("test-token", githubProvider.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	messages := []contract.Message{{Role: "user", Content: "run a command"}}
	tools := []contract.ToolDef{{Name: "exec_command", Description: "run command", Parameters: map[string]interface{}{"type": "object"}}}

	resp, err := p.Generate(t.Context(), contract.CompletionRequest{Messages: messages, Tools: tools})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].Name != "exec_command" {
		t.Fatalf("unexpected tool name %q", resp.ToolCalls[0].Name)
	}

	messages = append(messages, contract.Message{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls})
	messages = append(messages, contract.Message{Role: "tool", ToolCallID: resp.ToolCalls[0].ID, Content: "hello"})

	final, err := p.Generate(t.Context(), contract.CompletionRequest{Messages: messages, Tools: tools})
	if err != nil {
		t.Fatalf("generate 2: %v", err)
	}
	if final.Content == "" {
		t.Fatalf("expected terminal content")
	}
	if len(final.ToolCalls) != 0 {
		t.Fatalf("terminal response must not carry tool calls")
	}

	if len(rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(rounds))
	}

	// The tool result must reach the endpoint as an observation turn.
	foundObservation := false
	for _, m := range rounds[1].Messages {
		if m.Role == "user" && strings.HasPrefix(m.Content, "Observation:") {
			foundObservation = true
			break
		}
	}
	if !foundObservation {
		t.Fatalf("expected observation message in second round")
	}
}
