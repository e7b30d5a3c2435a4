package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ronwebb/ghinfer/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_FlagsToContract(t *testing.T) {
	cmd := chatCmd
	require.NoError(t, cmd.Flags().Set("system", "be terse"))
	require.NoError(t, cmd.Flags().Set("temperature", "0.3"))
	require.NoError(t, cmd.Flags().Set("max_tokens", "128"))
	defer func() {
		cmd.Flags().Set("system", "")
		cmd.Flags().Set("max_tokens", "0")
	}()

	req, err := buildRequest(cmd, "hello")
	require.NoError(t, err)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, contract.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, contract.RoleUser, req.Messages[1].Role)
	assert.Equal(t, "hello", req.Messages[1].Content)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.3, *req.Temperature, 0.001)
	assert.Equal(t, 128, req.MaxTokens)
}

func TestLoadToolDefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "add_numbers", "description": "Adds numbers", "parameters": {"type": "object"}}
	]`), 0o644))

	tools, err := loadToolDefs(path)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "add_numbers", tools[0].Name)
}

func TestLoadToolDefs_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := loadToolDefs(path)
	assert.Error(t, err)
}

func TestPrintResponse_ToolCalls(t *testing.T) {
	var buf bytes.Buffer
	printResponse(&buf, &contract.CompletionResponse{
		ToolCalls: []*contract.ToolCall{{ID: "call_0", Name: "get_weather", Input: `{"city":"Manila"}`}},
	})

	out := buf.String()
	assert.Contains(t, out, "get_weather")
	assert.Contains(t, out, "call_0")
	assert.Contains(t, out, `{"city":"Manila"}`)
}

func TestPrintResponse_Terminal(t *testing.T) {
	var buf bytes.Buffer
	printResponse(&buf, &contract.CompletionResponse{Content: "The Pacific Ocean."})
	assert.Contains(t, buf.String(), "The Pacific Ocean.")
}
