// Package genai calls a generative language API to produce lesson topic
// suggestions. Calls go through a retrier for transient faults and a
// circuit breaker so a flaky upstream cannot stall teacher requests.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/escola-hub/escola-server/pkg/circuitbreaker"
	"github.com/escola-hub/escola-server/pkg/retry"
)

// ErrUnavailable is returned when no topic suggestion can be produced,
// whatever the underlying cause. Callers degrade gracefully on it.
var ErrUnavailable = errors.New("topic generation unavailable")

// Config holds the client settings.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// DefaultConfig returns settings for the public endpoint.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		Model:   "gemini-1.5-flash",
		Timeout: 15 * time.Second,
	}
}

// Client generates lesson topics for a subject theme.
type Client struct {
	config  Config
	http    *http.Client
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// New builds a Client. The API key comes from config; an empty key makes
// every call fail with ErrUnavailable.
func New(config Config, logger *slog.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout},
		retrier: retry.TopicAPIRetrier(),
		breaker: circuitbreaker.TopicAPIBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		}),
		logger: logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateTopics asks for five short lesson topics about theme for the
// given subject and returns the raw numbered list.
func (c *Client) GenerateTopics(ctx context.Context, subject, theme string) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}

	prompt := fmt.Sprintf(
		"Gere 5 tópicos de aula curtos e didáticos sobre o tema '%s' para a disciplina de %s. Liste apenas os 5 tópicos numerados.",
		theme, subject)

	var text string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			var err error
			text, err = c.generate(ctx, prompt)
			return err
		})
	})
	if err != nil {
		c.logger.Warn("topic generation failed",
			slog.String("subject", subject),
			slog.String("theme", theme),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.config.BaseURL, c.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", retry.Transient(fmt.Errorf("call topic api: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", retry.Transient(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("topic api status %d: %s", resp.StatusCode, truncate(string(raw), 200))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", retry.Transient(apiErr)
		}
		return "", apiErr
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from topic api")
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
