package github

import (
	"encoding/json"
	"strconv"
	"strings"
)

// defaultInputKey wraps values that arrive without a parameter name.
const defaultInputKey = "input"

// parseToolInput turns an Action Input payload into structured arguments.
// JSON is tried first; then quote-aware key=value pairs; then a bare single
// value. Anything unparseable is preserved under the "input" key rather
// than dropped.
func parseToolInput(content string) map[string]interface{} {
	content = strings.TrimSpace(content)
	if content == "" {
		return map[string]interface{}{}
	}

	if parsed, ok := tryParseJSON(content); ok {
		return parsed
	}

	if isKeyValueFormat(content) {
		if pairs := parseKeyValuePairs(content); len(pairs) > 0 {
			return pairs
		}
	}

	if isSingleValue(content) {
		return map[string]interface{}{defaultInputKey: unquote(content)}
	}

	return map[string]interface{}{defaultInputKey: content}
}

// tryParseJSON accepts any valid JSON document. Objects pass through;
// everything else (string, number, array) is wrapped under the input key.
func tryParseJSON(content string) (map[string]interface{}, bool) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, false
	}

	if obj, ok := parsed.(map[string]interface{}); ok {
		return obj, true
	}
	return map[string]interface{}{defaultInputKey: parsed}, true
}

func isKeyValueFormat(content string) bool {
	return strings.Contains(content, "=") &&
		(strings.Contains(content, ",") || strings.Count(content, "=") == 1)
}

func isSingleValue(content string) bool {
	return content != "" && !strings.ContainsAny(content, "{[=")
}

// parseKeyValuePairs handles inputs like: query="search term", limit=5
func parseKeyValuePairs(content string) map[string]interface{} {
	result := map[string]interface{}{}

	for _, pair := range splitPairs(content) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		result[key] = convertValue(strings.TrimSpace(value))
	}

	return result
}

// splitPairs splits on commas that sit outside quoted strings.
func splitPairs(content string) []string {
	var pairs []string
	var current strings.Builder
	inQuotes := false
	var quote rune

	for _, r := range content {
		switch {
		case (r == '"' || r == '\'') && !inQuotes:
			inQuotes = true
			quote = r
		case r == quote && inQuotes:
			inQuotes = false
		case r == ',' && !inQuotes:
			if p := strings.TrimSpace(current.String()); p != "" {
				pairs = append(pairs, p)
			}
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}

	if p := strings.TrimSpace(current.String()); p != "" {
		pairs = append(pairs, p)
	}

	return pairs
}

// convertValue coerces an unquoted value onto bool, int or float; quoted
// values stay strings.
func convertValue(value string) interface{} {
	if isQuoted(value) {
		return unquote(value)
	}

	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}

	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return value
}

func isQuoted(value string) bool {
	if len(value) < 2 {
		return false
	}
	return (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
		(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`))
}

func unquote(value string) string {
	if isQuoted(value) {
		return value[1 : len(value)-1]
	}
	return value
}
