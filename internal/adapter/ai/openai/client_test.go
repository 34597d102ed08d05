package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/config"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

func testClient(baseURL string) *Client {
	return New(config.Config{
		AppEnv:        "test",
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: baseURL,
		OpenAIModel:   "gpt-4o",
		OracleTimeout: 5 * time.Second,
	})
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
	})
	return string(b)
}

func TestInvoke_Success(t *testing.T) {
	var gotAuth, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotBody = req.Messages[0].Content
		_, _ = w.Write([]byte(completion(`{"score": 80}`)))
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	out, err := c.Invoke(context.Background(), domain.OracleRequest{
		Instructions: "Score this resume.",
		Document:     "Ada, Go engineer",
		MaxTokens:    500,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"score": 80}`, out)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, gotBody, "Score this resume.")
	assert.Contains(t, gotBody, "Attached document:")
	assert.Contains(t, gotBody, "Ada, Go engineer")
}

func TestInvoke_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(completion("ok")))
	}))
	defer ts.Close()

	out, err := testClient(ts.URL).Invoke(context.Background(), domain.OracleRequest{Instructions: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInvoke_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(completion("recovered")))
	}))
	defer ts.Close()

	out, err := testClient(ts.URL).Invoke(context.Background(), domain.OracleRequest{Instructions: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestInvoke_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Invoke(context.Background(), domain.OracleRequest{Instructions: "hi"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvoke_EmptyCompletionIsSchemaInvalid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Invoke(context.Background(), domain.OracleRequest{Instructions: "hi"})
	require.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestInvoke_MissingAPIKey(t *testing.T) {
	c := New(config.Config{AppEnv: "test", OpenAIBaseURL: "http://localhost:0"})
	_, err := c.Invoke(context.Background(), domain.OracleRequest{Instructions: "hi"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestComposeContent_NoDocument(t *testing.T) {
	got := composeContent(domain.OracleRequest{Instructions: "just instructions"})
	assert.Equal(t, "just instructions", got)
}
