package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/blog-forge/app/cfg"
)

type Client struct {
	url         string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	httpClient  *http.Client
}

func NewClient(c *cfg.Cfg, httpClient *http.Client) *Client {
	return &Client{
		url:         c.DeepSeekURL,
		apiKey:      c.DeepSeekAPIKey,
		model:       c.Model,
		temperature: c.Temperature,
		maxTokens:   c.MaxTokens,
		timeout:     time.Duration(c.RequestTimeout) * time.Second,
		maxRetries:  c.MaxRetries,
		retryDelay:  time.Duration(c.RetryDelay) * time.Second,
		httpClient:  httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// attemptOutcome drives the retry state machine: an attempt either succeeds,
// fails terminally, or asks for a backoff before the next attempt.
type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeTerminal
	outcomeBackoff
)

// Generate issues one logical completion request for the instruction,
// retrying rate limits and transport failures with a shared attempt budget.
// On success the raw content is passed through Clean before returning.
func (c *Client) Generate(ctx context.Context, instruction string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: instruction}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	var lastStatus int
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		content, outcome, status, err := c.attempt(ctx, body)

		switch outcome {
		case outcomeSuccess:
			return Clean(content), nil
		case outcomeTerminal:
			return "", err
		case outcomeBackoff:
			lastStatus = status
			lastErr = err
		}

		if attempt == c.maxRetries {
			break
		}

		// Linear backoff: retryDelay * attempt number. The sleep is
		// context-aware so cancellation is never blocked on it.
		delay := c.retryDelay * time.Duration(attempt)
		slog.Warn("Completion request failed, retrying",
			"attempt", attempt,
			"max_retries", c.maxRetries,
			"status", status,
			"delay", delay.String(),
			"error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	if lastStatus == http.StatusTooManyRequests {
		return "", &RateLimitError{Status: lastStatus, Attempts: c.maxRetries}
	}
	return "", &NetworkError{Attempts: c.maxRetries, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, body []byte) (string, attemptOutcome, int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return "", outcomeTerminal, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", outcomeBackoff, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", outcomeBackoff, resp.StatusCode, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var decoded chatResponse
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return "", outcomeTerminal, resp.StatusCode, fmt.Errorf("failed to parse completion response: %w", err)
		}
		// Missing choices is an empty result, not an error
		if len(decoded.Choices) == 0 {
			return "", outcomeSuccess, resp.StatusCode, nil
		}
		return decoded.Choices[0].Message.Content, outcomeSuccess, resp.StatusCode, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return "", outcomeBackoff, resp.StatusCode, fmt.Errorf("rate limited")

	default:
		return "", outcomeTerminal, resp.StatusCode, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}
}
