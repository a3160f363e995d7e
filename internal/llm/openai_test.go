package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/prompt-relay/internal/config"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   *int64  `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const completionResponse = `{
  "id": "chatcmpl-123",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "google/gemma-3-4b",
  "choices": [
    {
      "index": 0,
      "message": {"role": "assistant", "content": "  Tell me a clever, family-friendly joke about programmers.\n"},
      "finish_reason": "stop"
    }
  ],
  "usage": {"prompt_tokens": 60, "completion_tokens": 12, "total_tokens": 72}
}`

func newLocalServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, config.LocalConfig) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return ts, config.LocalConfig{
		Endpoint:    ts.URL + "/v1/",
		APIKey:      "lm-studio",
		Model:       "google/gemma-3-4b",
		Temperature: 0.4,
	}
}

func TestOpenAIEnhance(t *testing.T) {
	var got chatRequest
	var path string
	_, cfg := newLocalServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	})

	enhanced, err := NewOpenAI(cfg).Enhance(context.Background(), "tell me a joke")
	require.NoError(t, err)

	assert.Equal(t, "Tell me a clever, family-friendly joke about programmers.", enhanced, "content should be trimmed")
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "google/gemma-3-4b", got.Model)
	assert.InDelta(t, 0.4, got.Temperature, 1e-9)
	assert.Nil(t, got.MaxTokens, "max_tokens should be omitted when unset")
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, `Original Prompt: "tell me a joke"`)
	assert.Contains(t, got.Messages[0].Content, "Return only the enhanced prompt")
}

func TestOpenAIEnhanceSendsStringContent(t *testing.T) {
	var raw map[string]json.RawMessage
	_, cfg := newLocalServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	})

	_, err := NewOpenAI(cfg).Enhance(context.Background(), `say "hi"`)
	require.NoError(t, err)

	var messages []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["messages"], &messages))
	require.Len(t, messages, 1)

	var content string
	require.NoError(t, json.Unmarshal(messages[0]["content"], &content), "content must be a JSON string, got %s", messages[0]["content"])
	assert.Contains(t, content, `Original Prompt: "say "hi""`)
}

func TestOpenAIEnhanceMaxTokens(t *testing.T) {
	var got chatRequest
	_, cfg := newLocalServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	})
	cfg.MaxTokens = 150

	_, err := NewOpenAI(cfg).Enhance(context.Background(), "tell me a joke")
	require.NoError(t, err)
	require.NotNil(t, got.MaxTokens)
	assert.Equal(t, int64(150), *got.MaxTokens)
}

func TestOpenAIEnhanceServerError(t *testing.T) {
	calls := 0
	_, cfg := newLocalServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "model not loaded"}}`))
	})

	_, err := NewOpenAI(cfg).Enhance(context.Background(), "tell me a joke")
	assert.ErrorContains(t, err, "local model request failed")
	assert.Equal(t, 1, calls, "the SDK must not retry")
}

func TestOpenAIEnhanceNoChoices(t *testing.T) {
	_, cfg := newLocalServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	})

	_, err := NewOpenAI(cfg).Enhance(context.Background(), "tell me a joke")
	assert.ErrorIs(t, err, errNoChoices)
}

func TestOpenAIEnhanceUnreachable(t *testing.T) {
	ts, cfg := newLocalServer(t, func(w http.ResponseWriter, r *http.Request) {})
	ts.Close()

	_, err := NewOpenAI(cfg).Enhance(context.Background(), "tell me a joke")
	assert.Error(t, err)
}
