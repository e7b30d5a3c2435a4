package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
	"github.com/ronwebb/ghinfer/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	p, err := New("test-key", Options{BaseURL: baseURL})
	require.NoError(t, err)
	return p
}

func userRequest(prompt string) contract.CompletionRequest {
	return contract.CompletionRequest{
		Messages: []contract.Message{{Role: contract.RoleUser, Content: prompt}},
	}
}

func TestNew_RequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := New("", Options{})
	assert.ErrorIs(t, err, ghErrors.ErrInvalidRequest)
}

func TestGenerate_TextResponse(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	p := testProvider(t, srv.URL)
	resp, err := p.Generate(t.Context(), userRequest("hi"))

	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Content)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, DefaultModel, captured["model"])
}

func TestGenerate_NativeToolCalls(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","tool_calls":[
			{"id":"call_abc","type":"function","function":{"name":"get_weather","arguments":"{\"city\":\"Manila\"}"}}
		]}}]}`))
	}))
	defer srv.Close()

	p := testProvider(t, srv.URL)
	req := userRequest("weather?")
	req.Tools = []contract.ToolDef{{Name: "get_weather", Description: "Looks up weather"}}

	resp, err := p.Generate(t.Context(), req)
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_abc", resp.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"city":"Manila"}`, resp.ToolCalls[0].Input)

	// Declared tools ride the request as native function definitions.
	tools, ok := captured["tools"].([]interface{})
	require.True(t, ok)
	require.Len(t, tools, 1)
}

func TestGenerate_MissingToolCallIDsMinted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","tool_calls":[
			{"type":"function","function":{"name":"a","arguments":"{}"}},
			{"type":"function","function":{"name":"b","arguments":"{}"}}
		]}}]}`))
	}))
	defer srv.Close()

	p := testProvider(t, srv.URL)
	resp, err := p.Generate(t.Context(), userRequest("go"))
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, "call_0", resp.ToolCalls[0].ID)
	assert.Equal(t, "call_1", resp.ToolCalls[1].ID)
}

func TestGenerate_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := testProvider(t, srv.URL)
	_, err := p.Generate(t.Context(), userRequest("hi"))
	assert.ErrorIs(t, err, ghErrors.ErrAuth)
}

func TestGenerate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	p := testProvider(t, srv.URL)
	_, err := p.Generate(t.Context(), userRequest("hi"))
	assert.ErrorIs(t, err, ghErrors.ErrRateLimited)
}

func TestGenerate_UnreachableEndpointIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := testProvider(t, url)
	_, err := p.Generate(t.Context(), userRequest("hi"))
	assert.ErrorIs(t, err, ghErrors.ErrTransport)
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := testProvider(t, srv.URL)
	_, err := p.Generate(t.Context(), userRequest("hi"))
	assert.ErrorIs(t, err, ghErrors.ErrProtocol)
}
