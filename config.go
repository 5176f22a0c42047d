package spacetraveling

import (
	"log/slog"
	"time"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name (default "spacetraveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite page store path (default "data/pages.db")

	ContentEndpoint  string        // Required: repository API endpoint, e.g. https://repo.cdn.prismic.io/api/v2
	ContentToken     string        // Repository access token, if the API is private
	ContentTimeout   time.Duration // Per-request timeout against the content API (default 30s)
	ContentRateLimit float64       // Requests per second against the content API (default 10, <0 disables)

	PageSize         int  // Posts per listing page (default 1)
	BuildConcurrency int  // Detail pages fetched in parallel during a build (default 4)
	FetchLimit       int  // Upstream-hitting requests per IP per minute (default 30)
	TrustedRichText  bool // Skip sanitizing rich-text output

	Timezone string // IANA zone used to format dates (default "UTC")
	LogLevel string // debug, info, warn or error (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/pages.db"
	}
	if c.ContentTimeout == 0 {
		c.ContentTimeout = 30 * time.Second
	}
	if c.ContentRateLimit == 0 {
		c.ContentRateLimit = 10
	}
	if c.PageSize <= 0 {
		c.PageSize = 1
	}
	if c.BuildConcurrency <= 0 {
		c.BuildConcurrency = 4
	}
	if c.FetchLimit <= 0 {
		c.FetchLimit = 30
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithContentSource replaces the content API client built from SiteConfig.
func WithContentSource(src ContentSource) Option {
	return func(a *App) {
		a.Content = src
	}
}

// WithStore uses an already opened page store instead of DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Pages = s
	}
}

// WithLogger sets the application logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
