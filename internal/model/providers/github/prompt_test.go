package github

import (
	"strings"
	"testing"

	"github.com/ronwebb/ghinfer/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weatherTool = contract.ToolDef{
	Name:        "get_weather",
	Description: "Looks up current weather",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"city":  map[string]interface{}{"type": "string", "description": "City name"},
			"units": map[string]interface{}{"type": "string"},
		},
	},
}

func TestWithToolPrompt_PrependsSystemMessage(t *testing.T) {
	in := []apiMessage{{Role: "user", Content: "weather in Manila?"}}

	out := withToolPrompt(in, []contract.ToolDef{weatherTool})

	require.Len(t, out, 2)
	assert.Equal(t, "system", out[0].Role)
	assert.True(t, strings.HasPrefix(out[0].Content, basePrompt))
	assert.Contains(t, out[0].Content, "get_weather: Looks up current weather")
	assert.Contains(t, out[0].Content, "Parameters: city (City name), units")
	assert.Equal(t, in[0], out[1])
}

func TestWithToolPrompt_AppendsToExistingSystem(t *testing.T) {
	in := []apiMessage{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hi"},
	}

	out := withToolPrompt(in, []contract.ToolDef{weatherTool})

	require.Len(t, out, 2)
	assert.True(t, strings.HasPrefix(out[0].Content, "be terse"))
	assert.Contains(t, out[0].Content, "Available tools:")
	// Input slice must not be mutated.
	assert.Equal(t, "be terse", in[0].Content)
}

func TestWithToolPrompt_NoTools(t *testing.T) {
	in := []apiMessage{{Role: "user", Content: "hi"}}
	assert.Equal(t, in, withToolPrompt(in, nil))
}

func TestBuildToolDescriptions_SkipsUnnamed(t *testing.T) {
	got := buildToolDescriptions([]contract.ToolDef{{Description: "nameless"}})
	assert.Empty(t, got)
}

func TestDescribeParameters_StableOrder(t *testing.T) {
	params := map[string]interface{}{
		"properties": map[string]interface{}{
			"b": map[string]interface{}{},
			"a": map[string]interface{}{},
			"c": map[string]interface{}{},
		},
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, "a, b, c", describeParameters(params))
	}
}
