// Package ai talks to a hosted Gemini model for record summaries and voice
// note transcription. Neither operation returns an error to its caller:
// failures degrade to a fixed fallback text or an empty transcript.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/metrics"
	"github.com/renalog/renalog/internal/model"
)

// SummaryFallback is returned whenever a summary cannot be produced.
const SummaryFallback = "A summary is not available right now. Check your connection and AI settings, then try again."

// NoRecordsSummary is returned when there is nothing to summarize.
const NoRecordsSummary = "There are no health records yet. Add a record to get a summary."

// ErrNoAPIKey is returned internally when no API key is configured.
var ErrNoAPIKey = errors.New("no AI API key configured")

// Config holds the AI gateway settings. Empty Endpoint and APIVersion use
// the SDK defaults.
type Config struct {
	APIKey            string
	Model             string
	Endpoint          string
	APIVersion        string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client is a rate-limited Gemini client.
type Client struct {
	cfg     Config
	models  *genai.Models
	initErr error
	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient creates a client. A nil httpClient uses one with cfg.Timeout.
// Without an API key no SDK client is built and every call falls back.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 1
	}
	c := &Client{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		now:     time.Now,
	}

	if cfg.APIKey == "" {
		c.initErr = ErrNoAPIKey
		return c
	}
	gc, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.Endpoint,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		c.initErr = fmt.Errorf("create gemini client: %w", err)
		return c
	}
	c.models = gc.Models
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Summarize returns a plain-language summary of records. Records are sorted
// chronologically before the prompt is built. Any failure yields
// SummaryFallback.
func (c *Client) Summarize(ctx context.Context, records []*model.HealthRecord, profile *model.PatientProfile) string {
	if len(records) == 0 {
		return NoRecordsSummary
	}

	sorted := make([]*model.HealthRecord, len(records))
	copy(sorted, records)
	model.SortRecords(sorted)

	prompt := BuildSummaryPrompt(sorted, profile, c.now())
	text, err := c.generate(ctx, "summarize", genai.Text(prompt))
	if err != nil || strings.TrimSpace(text) == "" {
		logging.DebugContext(ctx, "summary unavailable", logging.KeyError, err)
		return SummaryFallback
	}
	return strings.TrimSpace(text)
}

// Transcribe returns the text spoken in audio, or "" on any failure.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) string {
	if len(audio) == 0 {
		return ""
	}
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(transcribeInstructions),
		genai.NewPartFromBytes(audio, mimeType),
	}, genai.RoleUser)}
	text, err := c.generate(ctx, "transcribe", contents)
	if err != nil {
		logging.DebugContext(ctx, "transcription unavailable", logging.KeyError, err)
		return ""
	}
	return strings.TrimSpace(text)
}

// generate performs one rate-limited GenerateContent call and returns the
// text of the first candidate.
func (c *Client) generate(ctx context.Context, op string, contents []*genai.Content) (text string, err error) {
	if c.initErr != nil {
		return "", c.initErr
	}

	start := time.Now()
	defer func() {
		metrics.RecordAIRequest(op, err == nil, time.Since(start))
	}()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: 1024,
	})
	if err != nil {
		// Transport errors may quote the request URL
		return "", fmt.Errorf("%s: %s", op, logging.MaskString(err.Error()))
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	logging.DebugContext(ctx, "ai request complete",
		logging.KeyOperation, op,
		logging.KeyModel, c.cfg.Model,
		logging.KeyDuration, time.Since(start).Milliseconds(),
	)
	return resp.Text(), nil
}
