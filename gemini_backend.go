package lotofacil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// GeminiBackend asks a Gemini model for candidate games through the
// generateContent REST endpoint with a structured JSON response schema.
type GeminiBackend struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	limiter    *rate.Limiter
	recovery   *ErrorRecovery
	logger     Logger
}

// NewGeminiBackend creates a backend from the generator configuration.
// A missing API key is reported per call so the client falls back.
func NewGeminiBackend(config *GeneratorConfig, logger Logger) *GeminiBackend {
	if config == nil {
		config = DefaultGeneratorConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}
	burst := config.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &GeminiBackend{
		httpClient: &http.Client{Timeout: config.Timeout},
		endpoint:   strings.TrimRight(config.Endpoint, "/"),
		model:      config.Model,
		apiKey:     config.APIKey,
		limiter:    rate.NewLimiter(limit, burst),
		recovery: NewErrorRecovery(
			NewDefaultErrorHandler(logger, config.RetryInterval), config.RetryAttempts, logger),
		logger: logger,
	}
}

// WithHTTPClient replaces the HTTP client, keeping everything else
func (b *GeminiBackend) WithHTTPClient(client *http.Client) *GeminiBackend {
	c := *b
	c.httpClient = client
	return &c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type geminiRequest struct {
	SystemInstruction geminiContent          `json:"systemInstruction"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

func (b *GeminiBackend) url() string {
	return fmt.Sprintf("%s/models/%s:generateContent", b.endpoint, b.model)
}

// Produce sends the request and returns the concatenated text parts of the first candidate
func (b *GeminiBackend) Produce(ctx context.Context, req *GenerationRequest) ([]byte, error) {
	if b.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction()}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt()}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.ResponseSchema(),
		},
	})
	if err != nil {
		return nil, ErrTransportFailure.WithDetails("encode request").WithCause(err)
	}

	var payload []byte
	err = b.recovery.ExecuteWithRetry(ctx, func() error {
		if err := b.limiter.Wait(ctx); err != nil {
			return ErrRateLimited.WithCause(err)
		}

		raw, err := b.post(ctx, body)
		if err != nil {
			return err
		}
		payload, err = extractCandidateText(raw)
		return err
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debug("Gemini backend answered: model=%s, count=%d, strategy=%s, bytes=%d",
		b.model, req.Count(), req.Strategy(), len(payload))
	return payload, nil
}

// post performs one HTTP round trip and returns the raw response body
func (b *GeminiBackend) post(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url(), bytes.NewReader(body))
	if err != nil {
		return nil, ErrTransportFailure.WithDetails("build request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-goog-api-key", b.apiKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		e := ErrTransportFailure.WithDetails(err.Error()).WithCause(err)
		e.Retryable = IsRetryableError(err)
		return nil, e
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, ErrTransportFailure.WithDetails("read response").WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		e := ErrBackendStatus.
			WithDetails(fmt.Sprintf("status %d: %s", resp.StatusCode, msg)).
			WithMetadata("status", resp.StatusCode)
		e.Retryable = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, e
	}
	return raw, nil
}

// extractCandidateText pulls the model text out of a generateContent response
func extractCandidateText(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrSchemaViolation.WithDetails("backend envelope is not valid JSON")
	}

	if reason := gjson.GetBytes(raw, "promptFeedback.blockReason").String(); reason != "" {
		return nil, ErrSchemaViolation.WithDetails("prompt blocked: " + reason)
	}

	var text strings.Builder
	for _, part := range gjson.GetBytes(raw, "candidates.0.content.parts.#.text").Array() {
		text.WriteString(part.String())
	}
	if text.Len() == 0 {
		reason := gjson.GetBytes(raw, "candidates.0.finishReason").String()
		return nil, ErrSchemaViolation.WithDetails("empty candidate text, finishReason=" + reason)
	}
	return []byte(text.String()), nil
}
