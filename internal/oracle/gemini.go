// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package oracle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the model used unless configured otherwise.
const DefaultGeminiModel = "gemini-2.5-flash"

// Retry policy for transient API failures.
const (
	geminiMaxRetries     = 5
	geminiBackoffBase    = time.Second
	geminiBackoffCeiling = 20 * time.Second
)

// Gemini is a Generator backed by the Google Gemini API. Transient
// failures (rate limits, server errors, timeouts) are retried with
// capped exponential backoff; everything else fails immediately.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ Generator = (*Gemini)(nil)

// GeminiOption configures a Gemini generator.
type GeminiOption func(*Gemini)

// WithModel overrides the model name.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) { g.model = model }
}

// WithGeminiLogger sets the logger.
func WithGeminiLogger(logger *slog.Logger) GeminiOption {
	return func(g *Gemini) { g.logger = logger }
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, oops.Code("missing_api_key").Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, oops.Code("gemini_client_failed").Wrap(err)
	}
	g := &Gemini{client: client, model: DefaultGeminiModel, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate sends the prompt with the given system framing and returns
// the response text.
func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	backoff := retry.WithCappedDuration(geminiBackoffCeiling, retry.NewExponential(geminiBackoffBase))
	backoff = retry.WithMaxRetries(geminiMaxRetries, backoff)

	var text string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			if retriableAPIError(err) {
				g.logger.WarnContext(ctx, "gemini transient error, retrying", "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		text, err = responseText(resp)
		return err
	})
	if err != nil {
		return "", oops.Code("gemini_failed").With("model", g.model).Wrap(err)
	}
	return text, nil
}

// retriableAPIError reports whether the error is a transient API
// condition worth retrying: rate limiting or server-side failure.
func retriableAPIError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

// responseText extracts the text of the first candidate. A blocked or
// empty response is a permanent error, not a retriable one.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		reason := "unknown"
		if resp.PromptFeedback != nil {
			reason = resp.PromptFeedback.BlockReason.String()
		}
		return "", oops.Code("gemini_blocked").With("reason", reason).Errorf("response blocked or empty")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", oops.Code("gemini_blocked").Errorf("no text parts in response")
	}
	return b.String(), nil
}
