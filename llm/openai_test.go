package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider("test-key", srv.URL+"/v1", "text-embedding-3-small")
}

func TestOpenAIProvider_CompleteSendsJSONRequest(t *testing.T) {
	var got map[string]any
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"answer\":\"hi\"}"}, "finish_reason": "stop"}]
		}`))
	})

	reply, err := p.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		JSON:        true,
		Prompt:      "question?",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"hi"}`, reply)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	assert.Equal(t, "question?", messages[0].(map[string]any)["content"])
}

func TestOpenAIProvider_CompleteNoChoices(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	})

	_, err := p.Complete(context.Background(), CompletionRequest{Model: "m", Prompt: "p"})
	assert.Error(t, err)
}

func TestOpenAIProvider_EmbedOrdersByIndex(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0, 1]},
				{"object": "embedding", "index": 0, "embedding": [1, 0]}
			]
		}`))
	})

	vectors, err := p.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
}

func TestOpenAIProvider_EmbedCountMismatch(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": [{"object": "embedding", "index": 0, "embedding": [1]}]}`))
	})

	_, err := p.Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}
