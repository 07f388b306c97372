package analysis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codereview/internal/config"
)

func chatServer(t *testing.T, status int, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOpenAI(t *testing.T, url string) *OpenAI {
	t.Helper()
	p, err := NewOpenAI(config.AnalysisConfig{APIKey: "test-key", BaseURL: url + "/v1/", MaxTokens: 500})
	require.NoError(t, err)
	return p
}

func TestOpenAI_Analyze(t *testing.T) {
	var seen map[string]any
	reply := `{"passedChecks":3,"warnings":1,"errors":0,"issues":[{"type":"warning","severity":"low","title":"t","description":"d","file":"main.go","line":7}]}`
	srv := chatServer(t, http.StatusOK, reply, &seen)

	res, err := newTestOpenAI(t, srv.URL).Analyze(context.Background(), []string{"package main"}, []string{"main.go"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.PassedChecks)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "main.go", res.Issues[0].File)
	assert.Equal(t, 7, *res.Issues[0].Line)

	assert.Equal(t, "gpt-4o-mini", seen["model"])
	assert.EqualValues(t, 500, seen["max_tokens"])
	msgs := seen["messages"].([]any)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "--- File: main.go ---\npackage main")
}

func TestOpenAI_UnparseableReply(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "I could not review this.", nil)

	res, err := newTestOpenAI(t, srv.URL).Analyze(context.Background(), []string{"x"}, []string{"x.js"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, "system", res.Issues[0].File)
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)

	_, err := newTestOpenAI(t, srv.URL).Analyze(context.Background(), []string{"x"}, []string{"x.js"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "create chat completion"))
}

func TestOpenAI_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestOpenAI(t, srv.URL).Analyze(ctx, []string{"x"}, []string{"x.js"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, isReasoningModel("o3-mini"))
	assert.True(t, isReasoningModel("gpt-5"))
	assert.False(t, isReasoningModel("gpt-4o-mini"))
}
