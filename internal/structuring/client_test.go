package structuring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewClient(openai.NewClientWithConfig(cfg), "")
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4-turbo",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	})
	return string(b)
}

func TestStructureSendsPromptAndParsesResponse(t *testing.T) {
	var gotPrompt string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		gotPrompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse(goodResponse)))
	})

	res, err := c.Structure(context.Background(), rawInput)
	require.NoError(t, err)
	assert.Len(t, res.Transcript, 2)
	assert.Contains(t, gotPrompt, "id:1, start:2.4, end:5, text:world")
}

func TestStructureEmptyInputSkipsTheModel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("model must not be called for empty input")
		w.WriteHeader(http.StatusInternalServerError)
	})

	res, err := c.Structure(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Transcript)
	assert.False(t, res.DegenerateHighlights)
}

func TestStructureMalformedResponseIsParseError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse("I could not produce JSON, sorry.")))
	})

	_, err := c.Structure(context.Background(), rawInput)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
}
