package publisher

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ghost publishes through the Ghost Admin API. Every request is signed with
// a fresh short-lived HS256 token derived from the id:secret admin key.
type Ghost struct {
	baseURL    string
	keyID      string
	secret     []byte
	httpClient *http.Client
}

const ghostTokenTTL = 120 * time.Second

func NewGhost(baseURL, apiKey string, httpClient *http.Client) (*Ghost, error) {
	id, secret, ok := strings.Cut(apiKey, ":")
	if !ok {
		return nil, fmt.Errorf("ghost API key must be in id:secret format")
	}

	// Admin keys carry a hex-encoded secret; fall back to raw bytes for
	// keys minted outside Ghost (test environments)
	secretBytes, err := hex.DecodeString(secret)
	if err != nil {
		secretBytes = []byte(secret)
	}

	return &Ghost{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyID:      id,
		secret:     secretBytes,
		httpClient: httpClient,
	}, nil
}

func (g *Ghost) Platform() string {
	return "ghost"
}

func (g *Ghost) token() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ghostTokenTTL).Unix(),
		"aud": "/admin/",
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = g.keyID

	return t.SignedString(g.secret)
}

// Slugify derives a URL slug from a post title: lower-cased, spaces to
// hyphens, everything outside [a-z0-9-] dropped.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = strings.ReplaceAll(slug, " ", "-")

	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mobiledoc wraps raw HTML as a single-card structured document, which is
// what the Ghost editor expects alongside the html field.
func mobiledoc(html string) (string, error) {
	doc := map[string]any{
		"version": "0.3.1",
		"atoms":   []any{},
		"cards": []any{
			[]any{"html", map[string]string{"html": html}},
		},
		"markups": []any{},
		"sections": []any{
			[]any{10, 0},
		},
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (g *Ghost) Publish(ctx context.Context, post Post) (*Result, error) {
	token, err := g.token()
	if err != nil {
		return nil, fmt.Errorf("failed to sign ghost token: %w", err)
	}

	doc, err := mobiledoc(post.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to build mobiledoc: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"posts": []map[string]any{{
			"title":      post.Title,
			"html":       post.Body,
			"mobiledoc":  doc,
			"status":     string(ParseStatus(string(post.Status))),
			"featured":   false,
			"visibility": "public",
			"slug":       Slugify(post.Title),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/ghost/api/admin/posts/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Version", "v5.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to publish to ghost: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ghost response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &PublishError{
			Platform: g.Platform(),
			Status:   resp.StatusCode,
			Message:  ghostErrorMessage(body),
		}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ghost response: %w", err)
	}

	result := &Result{
		Platform: g.Platform(),
		Raw:      raw,
	}

	if posts, ok := raw["posts"].([]any); ok && len(posts) > 0 {
		if created, ok := posts[0].(map[string]any); ok {
			result.ID = opaqueID(created["id"])
			if status, ok := created["status"].(string); ok {
				result.Status = status
			}
			if url, ok := created["url"].(string); ok {
				result.URL = url
			}
		}
	}

	return result, nil
}

// ghostErrorMessage digs the human-readable message out of a Ghost error
// body, falling back to the raw body.
func ghostErrorMessage(body []byte) string {
	var decoded struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(body, &decoded); err == nil && len(decoded.Errors) > 0 && decoded.Errors[0].Message != "" {
		return decoded.Errors[0].Message
	}
	return strings.TrimSpace(string(body))
}
