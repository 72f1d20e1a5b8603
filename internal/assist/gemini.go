package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"propdesk/internal/core"
)

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gemini-2.5-flash"
	// DefaultBaseURL is the public Generative Language API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	maxResponseSize = 1 << 20
)

// RetryConfig bounds retries of transient failures.
type RetryConfig struct {
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// DefaultRetryConfig returns three attempts with 2s doubling backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       2 * time.Second,
		BackoffMultiplier: 2,
		MaxBackoff:        30 * time.Second,
	}
}

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
	retry    RetryConfig
	logger   core.Logger
}

// Option customises a GeminiClient.
type Option func(*GeminiClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *GeminiClient) {
		if c != nil {
			g.http = c
		}
	}
}

// NewGeminiClient builds a client from cfg. Zero retry settings fall back
// to DefaultRetryConfig.
func NewGeminiClient(cfg Config, opts ...Option) *GeminiClient {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = core.NopLogger()
	}
	g := &GeminiClient{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: base + "/models/" + url.PathEscape(model) + ":generateContent",
		http:     &http.Client{Timeout: 60 * time.Second},
		retry:    retry,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// Suggest builds the prompt for field and returns the trimmed model text.
func (g *GeminiClient) Suggest(ctx context.Context, field string, form map[string]any) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{
		Role:  "user",
		Parts: []part{{Text: BuildPrompt(field, form)}},
	}}})
	if err != nil {
		return "", fatal(fmt.Errorf("encode request: %w", err))
	}

	var lastErr error
	for attempt := 1; attempt <= g.retry.MaxAttempts; attempt++ {
		text, err := g.do(ctx, body)
		if err == nil {
			g.logger.Debug("assist suggestion", "field", field, "model", g.model, "attempt", attempt, "chars", len(text))
			return text, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == g.retry.MaxAttempts {
			break
		}
		wait := g.backoff(attempt)
		g.logger.Warn("assist request failed, retrying", "field", field, "attempt", attempt, "backoff", wait, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

func (g *GeminiClient) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fatal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", transient(fmt.Errorf("gemini request: %w", err))
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", transient(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, raw)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fatal(fmt.Errorf("decode response: %w", err))
	}
	var b strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fatal(errors.New("gemini returned no text"))
	}
	return text, nil
}

// backoff grows geometrically from BackoffBase, capped at MaxBackoff, with
// up to 25% jitter either way.
func (g *GeminiClient) backoff(attempt int) time.Duration {
	d := float64(g.retry.BackoffBase)
	for i := 1; i < attempt; i++ {
		d *= g.retry.BackoffMultiplier
	}
	if ceiling := float64(g.retry.MaxBackoff); ceiling > 0 && d > ceiling {
		d = ceiling
	}
	return time.Duration(d * (1 + 0.25*(rand.Float64()*2-1)))
}
