package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseToolInput_JSONObject(t *testing.T) {
	got := parseToolInput(`{"a": 3, "b": 4.5, "name": "x"}`)
	assert.Equal(t, map[string]interface{}{"a": float64(3), "b": 4.5, "name": "x"}, got)
}

func TestParseToolInput_JSONNonObjectWrapped(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"input": "hello"}, parseToolInput(`"hello"`))
	assert.Equal(t, map[string]interface{}{"input": float64(42)}, parseToolInput(`42`))
	assert.Equal(t,
		map[string]interface{}{"input": []interface{}{float64(1), float64(2)}},
		parseToolInput(`[1, 2]`))
}

func TestParseToolInput_KeyValuePairs(t *testing.T) {
	got := parseToolInput(`query="search term", limit=5, strict=true, ratio=0.5`)
	assert.Equal(t, map[string]interface{}{
		"query":  "search term",
		"limit":  5,
		"strict": true,
		"ratio":  0.5,
	}, got)
}

func TestParseToolInput_KeyValueWithQuotedComma(t *testing.T) {
	got := parseToolInput(`city="Manila, PH", units=metric`)
	assert.Equal(t, map[string]interface{}{
		"city":  "Manila, PH",
		"units": "metric",
	}, got)
}

func TestParseToolInput_SingleValue(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"input": "golang concurrency"},
		parseToolInput("golang concurrency"))
	assert.Equal(t, map[string]interface{}{"input": "quoted value"},
		parseToolInput(`'quoted value'`))
}

func TestParseToolInput_Empty(t *testing.T) {
	assert.Empty(t, parseToolInput(""))
	assert.Empty(t, parseToolInput("   "))
}

func TestParseToolInput_FallbackPreservesContent(t *testing.T) {
	raw := `{broken json, sort of`
	assert.Equal(t, map[string]interface{}{"input": raw}, parseToolInput(raw))
}

func TestConvertValue(t *testing.T) {
	assert.Equal(t, true, convertValue("TRUE"))
	assert.Equal(t, false, convertValue("false"))
	assert.Equal(t, 7, convertValue("7"))
	assert.Equal(t, -1.25, convertValue("-1.25"))
	assert.Equal(t, "plain", convertValue("plain"))
	assert.Equal(t, "123", convertValue(`"123"`))
}
