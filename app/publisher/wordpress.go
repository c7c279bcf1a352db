package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// WordPress publishes through the WordPress REST API with an application
// password. The basic-auth header is built once at construction.
type WordPress struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

func NewWordPress(baseURL, username, appPassword string, httpClient *http.Client) *WordPress {
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + appPassword))
	return &WordPress{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + auth,
		httpClient: httpClient,
	}
}

func (w *WordPress) Platform() string {
	return "wordpress"
}

// wpStatus maps the canonical status vocabulary onto WordPress's. WordPress
// has no newsletter state, so sent publishes immediately.
func wpStatus(s Status) string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusScheduled:
		return "future"
	default:
		return "publish"
	}
}

func (w *WordPress) Publish(ctx context.Context, post Post) (*Result, error) {
	payload, err := json.Marshal(map[string]any{
		"title":   post.Title,
		"content": post.Body,
		"status":  wpStatus(ParseStatus(string(post.Status))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.baseURL+"/wp-json/wp/v2/posts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", w.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to publish to wordpress: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read wordpress response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &PublishError{
			Platform: w.Platform(),
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse wordpress response: %w", err)
	}

	result := &Result{
		ID:       opaqueID(raw["id"]),
		Platform: w.Platform(),
		Raw:      raw,
	}
	if status, ok := raw["status"].(string); ok {
		result.Status = status
	}
	if link, ok := raw["link"].(string); ok {
		result.URL = link
	}

	return result, nil
}
