package publisher

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/lysyi3m/blog-forge/app/cfg"
)

// UnsupportedPlatformError names the platform value that no publisher
// implementation claims.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported blog platform: %s", e.Platform)
}

// Factory resolves a Publisher from configuration with an optional
// per-call platform override.
type Factory struct {
	cfg        *cfg.Cfg
	httpClient *http.Client
}

func NewFactory(c *cfg.Cfg, httpClient *http.Client) *Factory {
	return &Factory{cfg: c, httpClient: httpClient}
}

// Create returns the publisher for the given platform, falling back to the
// configured default when platform is empty.
func (f *Factory) Create(platform string) (Publisher, error) {
	if platform == "" {
		platform = f.cfg.BlogPlatform
	}

	switch strings.ToLower(platform) {
	case "wordpress":
		return NewWordPress(f.cfg.WPURL, f.cfg.WPUsername, f.cfg.WPAppPass, f.httpClient), nil
	case "ghost":
		return NewGhost(f.cfg.GhostURL, f.cfg.GhostAPIKey, f.httpClient)
	default:
		return nil, &UnsupportedPlatformError{Platform: platform}
	}
}
