package assist

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
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BackoffBase: time.Millisecond, BackoffMultiplier: 1, MaxBackoff: 5 * time.Millisecond}
}

func reply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{"role": "model", "parts": []map[string]string{{"text": text}}},
		}},
	})
}

func TestGeminiSuggestSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		var req generateRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.Len(t, req.Contents, 1) {
			assert.Contains(t, req.Contents[0].Parts[0].Text, "Formule une vision à long terme")
		}
		reply(w, "  Une vision claire.  ")
	}))
	defer server.Close()

	client := NewGeminiClient(Config{APIKey: "secret", BaseURL: server.URL + "/v1beta/", Retry: fastRetry()})
	text, err := client.Suggest(context.Background(), "long_term_statement", map[string]any{
		KeyProposition: map[string]any{"name": "Eau potable"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Une vision claire.", text)
}

func TestGeminiRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		reply(w, "ok")
	}))
	defer server.Close()

	client := NewGeminiClient(Config{APIKey: "k", BaseURL: server.URL, Retry: fastRetry()})
	text, err := client.Suggest(context.Background(), "justification", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeminiGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient(Config{APIKey: "k", BaseURL: server.URL, Retry: fastRetry()})
	_, err := client.Suggest(context.Background(), "justification", nil)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeminiFatalFailuresAreNotRetried(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"unauthorized": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
		"empty text":   func(w http.ResponseWriter, _ *http.Request) { reply(w, "   ") },
		"no candidate": func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"candidates":[]}`)) },
		"bad json":     func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{`)) },
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				handler(w, r)
			}))
			defer server.Close()

			client := NewGeminiClient(Config{APIKey: "k", BaseURL: server.URL, Retry: fastRetry()})
			_, err := client.Suggest(context.Background(), "title", nil)
			require.Error(t, err)
			assert.True(t, IsFatal(err))
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestGeminiHonoursCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	retry := fastRetry()
	retry.BackoffBase = time.Hour
	retry.MaxBackoff = time.Hour
	client := NewGeminiClient(Config{APIKey: "k", BaseURL: server.URL, Retry: retry})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Suggest(ctx, "title", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewGeminiClientDefaults(t *testing.T) {
	client := NewGeminiClient(Config{APIKey: "k"}, WithHTTPClient(&http.Client{Timeout: time.Second}))
	assert.Equal(t, DefaultModel, client.model)
	assert.Equal(t, DefaultBaseURL+"/models/gemini-2.5-flash:generateContent", client.endpoint)
	assert.Equal(t, DefaultRetryConfig(), client.retry)
	assert.Equal(t, time.Second, client.http.Timeout)

	for attempt := 1; attempt <= 6; attempt++ {
		d := client.backoff(attempt)
		assert.LessOrEqual(t, d, time.Duration(float64(30*time.Second)*1.25))
		assert.Greater(t, d, time.Duration(0))
	}
}
