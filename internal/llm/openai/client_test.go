package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/llm"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

const completion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop",
    "message": {"role": "assistant", "content": "{\"Name\": \"John Doe\"}\n"}}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func newServer(t *testing.T, status int, body string, seen *chatRequest, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if seen != nil {
			require.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testPrompt() llm.Prompt {
	return llm.Prompt{System: "You parse resumes.", User: "Extract:", Skeleton: []byte(`{"Name":""}`)}
}

func TestRequestTextReturnsContentVerbatim(t *testing.T) {
	var seen chatRequest
	var calls int32
	srv := newServer(t, http.StatusOK, completion, &seen, &calls)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini"}, nil)

	out, err := c.Request(context.Background(), testPrompt(), llm.Content{Text: "John Doe, Software Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "{\"Name\": \"John Doe\"}\n", out)
	assert.EqualValues(t, 1, calls)

	assert.Equal(t, "gpt-4o-mini", seen.Model)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.JSONEq(t, `"You parse resumes."`, string(seen.Messages[0].Content))

	var user string
	require.NoError(t, json.Unmarshal(seen.Messages[1].Content, &user))
	assert.Equal(t, "Extract:\n{\"Name\":\"\"}\nJohn Doe, Software Engineer\n\n"+llm.Reminder, user)
}

func TestRequestImageAttachesDataURL(t *testing.T) {
	var seen chatRequest
	var calls int32
	srv := newServer(t, http.StatusOK, completion, &seen, &calls)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)

	_, err := c.Request(context.Background(), testPrompt(), llm.Content{Image: []byte{0xFF, 0xD8, 0xFF}, MIME: "image/jpeg"})
	require.NoError(t, err)

	var parts []contentPart
	require.NoError(t, json.Unmarshal(seen.Messages[1].Content, &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.True(t, strings.HasSuffix(parts[0].Text, llm.Reminder))
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "data:image/jpeg;base64,/9j/", parts[1].ImageURL.URL)
}

func TestRequestErrorStatusIsNotRetried(t *testing.T) {
	var calls int32
	srv := newServer(t, http.StatusTooManyRequests, `{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`, nil, &calls)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)

	out, err := c.Request(context.Background(), testPrompt(), llm.Content{Text: "x"})
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, common.ErrRequestFailed)
	assert.Equal(t, common.CodeRequestFailed, common.Classify(err))
	assert.EqualValues(t, 1, calls)
}

func TestRequestNoChoices(t *testing.T) {
	var calls int32
	srv := newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, nil, &calls)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)

	_, err := c.Request(context.Background(), testPrompt(), llm.Content{Text: "x"})
	assert.ErrorIs(t, err, common.ErrRequestFailed)
}

func TestShapeMismatchStillReturnsAnswer(t *testing.T) {
	var calls int32
	body := strings.Replace(completion, `{\"Name\": \"John Doe\"}\n`, `not json`, 1)
	srv := newServer(t, http.StatusOK, body, nil, &calls)
	sc, err := llm.NewShapeChecker([]byte(`{"Name":""}`), nil)
	require.NoError(t, err)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil, WithShapeChecker(sc))

	out, err := c.Request(context.Background(), testPrompt(), llm.Content{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "not json", out)
}
