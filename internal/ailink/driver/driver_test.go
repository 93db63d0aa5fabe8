package driver

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderErrorShapes(t *testing.T) {
	anthropic := NewProviderError("anthropic", 529,
		[]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	assert.Equal(t, "overloaded_error", anthropic.Type)
	assert.Equal(t, "Overloaded", anthropic.Message)

	openai := NewProviderError("openai", 404,
		[]byte(`{"error":{"message":"The model foo does not exist","type":"invalid_request_error","code":"model_not_found"}}`))
	assert.Equal(t, "invalid_request_error", openai.Type)
	assert.Equal(t, "The model foo does not exist", openai.Message)

	hf := NewProviderError("huggingface", 503,
		[]byte(`{"error":"Model mistralai/Mistral-7B is currently loading","estimated_time":20.0}`))
	assert.Equal(t, "Model mistralai/Mistral-7B is currently loading", hf.Message)
	assert.Contains(t, hf.Error(), "status 503")

	plain := NewProviderError("openai", 502, []byte("Bad Gateway\n"))
	assert.Equal(t, "Bad Gateway", plain.Message)
}

func TestEffectiveTemperature(t *testing.T) {
	temp := 0.7
	off := false
	on := true

	assert.Nil(t, (&Request{}).EffectiveTemperature())
	assert.Equal(t, 0.7, *(&Request{Temperature: &temp, Sampling: &on}).EffectiveTemperature())
	assert.Equal(t, 0.0, *(&Request{Temperature: &temp, Sampling: &off}).EffectiveTemperature())
}

func TestTracingWritesNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	stop, err := EnableTracing(path)
	require.NoError(t, err)

	StartTrace("anthropic", "/v1/messages", "claude-3-5-haiku-latest", []byte(`{"max_tokens":500}`)).
		Finish(200, []byte(`{"ok":true}`), nil)
	StartTrace("openai", "/chat/completions", "gpt-4o-mini", nil).
		Finish(502, []byte("Bad Gateway"), nil)
	StartTrace("openai", "/chat/completions", "gpt-4o-mini", nil).
		Finish(0, nil, errors.New("dial tcp: connection refused"))
	stop()
	StartTrace("ignored", "/", "", nil).Finish(200, nil, nil)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() // nolint:errcheck

	var entries []TraceEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry TraceEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.Len(t, entries, 3)
	assert.Equal(t, "claude-3-5-haiku-latest", entries[0].Model)
	assert.JSONEq(t, `{"max_tokens":500}`, string(entries[0].RequestBody))
	assert.JSONEq(t, `"Bad Gateway"`, string(entries[1].Response))
	assert.Equal(t, 502, entries[1].StatusCode)
	assert.Contains(t, entries[2].Error, "connection refused")
}
