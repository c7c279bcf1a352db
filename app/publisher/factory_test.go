package publisher

import (
	"errors"
	"net/http"
	"testing"

	appcfg "github.com/lysyi3m/blog-forge/app/cfg"
)

func factoryCfg() *appcfg.Cfg {
	return &appcfg.Cfg{
		BlogPlatform: "wordpress",
		WPURL:        "https://blog.example.com",
		WPUsername:   "admin",
		WPAppPass:    "pass",
		GhostURL:     "https://ghost.example.com",
		GhostAPIKey:  "abc123:deadbeef",
	}
}

func TestFactoryCreate_DistinctPlatforms(t *testing.T) {
	factory := NewFactory(factoryCfg(), http.DefaultClient)

	wp, err := factory.Create("wordpress")
	if err != nil {
		t.Fatalf("Unexpected error for wordpress: %v", err)
	}
	ghost, err := factory.Create("ghost")
	if err != nil {
		t.Fatalf("Unexpected error for ghost: %v", err)
	}

	if wp.Platform() != "wordpress" {
		t.Errorf("Expected wordpress platform, got %s", wp.Platform())
	}
	if ghost.Platform() != "ghost" {
		t.Errorf("Expected ghost platform, got %s", ghost.Platform())
	}

	if _, ok := wp.(*WordPress); !ok {
		t.Error("Expected *WordPress concrete type")
	}
	if _, ok := ghost.(*Ghost); !ok {
		t.Error("Expected *Ghost concrete type")
	}
}

func TestFactoryCreate_DefaultFromConfig(t *testing.T) {
	factory := NewFactory(factoryCfg(), http.DefaultClient)

	p, err := factory.Create("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Platform() != "wordpress" {
		t.Errorf("Expected configured default wordpress, got %s", p.Platform())
	}
}

func TestFactoryCreate_CaseInsensitive(t *testing.T) {
	factory := NewFactory(factoryCfg(), http.DefaultClient)

	p, err := factory.Create("Ghost")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Platform() != "ghost" {
		t.Errorf("Expected ghost, got %s", p.Platform())
	}
}

func TestFactoryCreate_Unsupported(t *testing.T) {
	factory := NewFactory(factoryCfg(), http.DefaultClient)

	_, err := factory.Create("bogus")

	var unsupported *UnsupportedPlatformError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Expected UnsupportedPlatformError, got %v", err)
	}
	if unsupported.Platform != "bogus" {
		t.Errorf("Expected error to name 'bogus', got %q", unsupported.Platform)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input    string
		expected Status
	}{
		{"draft", StatusDraft},
		{"published", StatusPublished},
		{"scheduled", StatusScheduled},
		{"sent", StatusSent},
		{"publish", StatusPublished},
		{"bogus", StatusPublished},
		{"", StatusPublished},
	}

	for _, tc := range cases {
		if got := ParseStatus(tc.input); got != tc.expected {
			t.Errorf("ParseStatus(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}
