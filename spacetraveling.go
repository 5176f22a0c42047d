// Package spacetraveling is a statically generated blog over a headless CMS.
// It builds a paginated listing page and one detail page per post from the
// content API, stores the rendered pages, and serves them with Echo. Detail
// pages missing from the build are rendered on demand behind a loading
// placeholder, and the listing page appends further pages with htmx.
//
// Users provide their own templ components via the ViewFuncs struct.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

// ViewFuncs holds the templ components the App renders pages with.
type ViewFuncs struct {
	Home        func(v HomeView) templ.Component
	MorePosts   func(v MoreView) templ.Component
	Post        func(v PostView) templ.Component
	PostPartial func(v PostView) templ.Component
	Loading     func(v LoadingView) templ.Component
	NotFound    func(site SiteConfig) templ.Component
	ServerError func(site SiteConfig) templ.Component
}

// ContentSource is the part of the content API the App reads from.
// *prismic.Client implements it.
type ContentSource interface {
	CursorFetcher
	Query(ctx context.Context, preds []prismic.Predicate, opts prismic.QueryOptions) (*prismic.Response, error)
	QueryAll(ctx context.Context, preds []prismic.Predicate, pageSize int) ([]prismic.Document, error)
	GetByUID(ctx context.Context, docType, uid string) (*prismic.Document, error)
}

// App wires together the content client, page store, renderer, handlers,
// middleware and user-provided templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Content  ContentSource
	Pages    *Store
	Views    ViewFuncs
	RichText *richtext.Renderer
	Logger   *slog.Logger

	http         *http.Client
	location     *time.Location
	fetchLimiter *FetchLimiter
	fallback     singleflight.Group
	metrics      *appMetrics
	customRoutes []func(*App)
	staticDir    string
	initialized  bool
	routed       bool
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}

	return a
}

// Init opens the page store and builds the content client and renderer.
// It is enough for Build; Setup additionally installs middleware and routes.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}

	loc, err := time.LoadLocation(a.Config.Timezone)
	if err != nil {
		return fmt.Errorf("spacetraveling: load timezone %q: %w", a.Config.Timezone, err)
	}
	a.location = loc
	a.http = &http.Client{Timeout: a.Config.ContentTimeout}

	if a.Content == nil {
		if a.Config.ContentEndpoint == "" {
			return errors.New("spacetraveling: ContentEndpoint is required")
		}
		limit := rate.Limit(a.Config.ContentRateLimit)
		if a.Config.ContentRateLimit < 0 {
			limit = 0
		}
		client, err := prismic.New(a.Config.ContentEndpoint,
			prismic.WithAccessToken(a.Config.ContentToken),
			prismic.WithTimeout(a.Config.ContentTimeout),
			prismic.WithRateLimit(limit, max(1, int(a.Config.ContentRateLimit))),
			prismic.WithLogger(a.Logger),
		)
		if err != nil {
			return fmt.Errorf("spacetraveling: content client: %w", err)
		}
		a.Content = client
	}

	if a.Pages == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("spacetraveling: init store: %w", err)
		}
		a.Pages = store
	}

	var rtOpts []richtext.Option
	if a.Config.TrustedRichText {
		rtOpts = append(rtOpts, richtext.Trusted())
	}
	a.RichText = richtext.New(rtOpts...)

	a.initialized = true
	return nil
}

// Setup runs Init and installs middleware and routes. The App can then be
// served through a.Echo.
func (a *App) Setup() error {
	if err := a.Init(); err != nil {
		return err
	}
	if a.routed {
		return nil
	}

	a.fetchLimiter = NewFetchLimiter(a.Config.FetchLimit, time.Minute)
	a.metrics = newAppMetrics()

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.routed = true
	return nil
}

// Start sets the App up and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("server starting", "addr", a.Config.Addr, "content", a.Config.ContentEndpoint)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/banners/:name", a.handleBanner)
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.metrics.registry,
	}))

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/more/", a.handleLoadMore)
	e.GET("/post/:uid/", a.handlePost)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.fetchLimiter != nil {
		a.fetchLimiter.Stop()
	}
	if a.Pages != nil {
		return a.Pages.Close()
	}
	return nil
}
