package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Status is the canonical post status vocabulary. Each backend maps it onto
// whatever its API expects at the boundary; backend-specific strings never
// leak out of this package.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusScheduled Status = "scheduled"
	StatusSent      Status = "sent"
)

// ParseStatus coerces an unrecognized value to StatusPublished with a
// warning. One policy for every backend.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusDraft, StatusPublished, StatusScheduled, StatusSent:
		return Status(s)
	default:
		slog.Warn("Invalid post status, defaulting to published", "status", s)
		return StatusPublished
	}
}

// Post is the title/body/status triple a publisher turns into a live post.
type Post struct {
	Title  string
	Body   string
	Status Status
}

// Result describes the created post. ID is platform-assigned and opaque:
// WordPress returns a number, Ghost a string. Raw keeps the backend payload
// for callers that need platform specifics.
type Result struct {
	ID       string
	URL      string
	Status   string
	Platform string
	Raw      map[string]any
}

// Publisher is a publish target for one content-management backend.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, post Post) (*Result, error)
}

// PublishError carries the backend status code and message for any non-2xx
// publish response.
type PublishError struct {
	Platform string
	Status   int
	Message  string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish to %s: %s (status %d)", e.Platform, e.Message, e.Status)
}

// opaqueID renders a platform-assigned identifier as a string regardless of
// its JSON type.
func opaqueID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}
