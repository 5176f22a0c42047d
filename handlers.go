package spacetraveling

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/prismic"
)

const (
	headerPageSource = "X-Page-Source"
	sourceBuild      = "build"
	sourceFallback   = "fallback"
)

var errRateLimited = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")

// serveStored writes the page stored under path. It reports false, with no
// response written, when the store has no such page.
func (a *App) serveStored(c echo.Context, path string) (bool, error) {
	p, err := a.Pages.GetPage(c.Request().Context(), path)
	if errors.Is(err, ErrPageNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	source := sourceBuild
	if p.Fallback {
		source = sourceFallback
	}
	c.Response().Header().Set(headerPageSource, source)
	a.metrics.pagesServed.WithLabelValues(source).Inc()
	return true, c.Blob(http.StatusOK, p.ContentType, p.Body)
}

// allowFetch applies the per-IP limit to requests that reach the content API.
func (a *App) allowFetch(c echo.Context) error {
	if !a.fetchLimiter.Allow(c.RealIP()) {
		return errRateLimited
	}
	return nil
}

func (a *App) handleHome(c echo.Context) error {
	if ok, err := a.serveStored(c, "/"); ok || err != nil {
		return err
	}
	if err := a.allowFetch(c); err != nil {
		return err
	}
	props, err := a.ListingProps(c.Request().Context())
	if err != nil {
		return contentError(err)
	}
	return Render(c, a.Views.Home(a.homeView(props)))
}

// handleLoadMore returns the next page of posts as an htmx fragment. Each
// request gets its own Pager, so duplicate triggers are dropped on the client
// by the button's hx-sync="this:drop".
func (a *App) handleLoadMore(c echo.Context) error {
	if !isHTMX(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pager := NewPager(a.Content, NewPageState(ListingProps{
		NextPage: c.QueryParam("cursor"),
		Page:     page,
	}), a.location)

	if !pager.State().HasMore() {
		a.metrics.loadMore.WithLabelValues("empty").Inc()
		return c.NoContent(http.StatusNoContent)
	}
	if err := a.allowFetch(c); err != nil {
		a.metrics.loadMore.WithLabelValues("limited").Inc()
		return err
	}

	state, _, err := pager.LoadMore(c.Request().Context())
	if err != nil {
		a.metrics.loadMore.WithLabelValues("error").Inc()
		return contentError(err)
	}
	a.metrics.loadMore.WithLabelValues("ok").Inc()
	return Render(c, a.Views.MorePosts(moreView(state)))
}

func (a *App) handlePost(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return echo.ErrNotFound
	}
	if c.QueryParam("partial") == "post" {
		return a.handlePostPartial(c, uid)
	}
	if ok, err := a.serveStored(c, PostPath(uid)); ok || err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return Render(c, a.Views.Loading(a.loadingView(uid)))
}

// handlePostPartial renders a post missing from the build. Concurrent
// requests for one uid share a single fetch, and a successful render is
// stored so later requests are served from the page store.
func (a *App) handlePostPartial(c echo.Context, uid string) error {
	if err := a.allowFetch(c); err != nil {
		return err
	}
	v, err, _ := a.fallback.Do(uid, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), a.Config.ContentTimeout)
		defer cancel()
		return a.renderFallback(ctx, uid)
	})
	if err != nil {
		if errors.Is(err, prismic.ErrNotFound) {
			a.metrics.fallbackRenders.WithLabelValues("not_found").Inc()
		} else {
			a.metrics.fallbackRenders.WithLabelValues("error").Inc()
		}
		return contentError(err)
	}
	a.metrics.fallbackRenders.WithLabelValues("ok").Inc()
	return Render(c, a.Views.PostPartial(v.(PostView)))
}

func (a *App) renderFallback(ctx context.Context, uid string) (PostView, error) {
	post, err := a.PostProps(ctx, uid)
	if err != nil {
		return PostView{}, err
	}
	view := a.postView(post)
	body, err := renderBytes(ctx, a.Views.Post(view))
	if err != nil {
		return PostView{}, err
	}
	page := Page{
		Path:        PostPath(uid),
		ContentType: mimeHTML,
		Body:        body,
		Fallback:    true,
		BuiltAt:     time.Now(),
	}
	if err := a.Pages.SavePage(ctx, page); err != nil {
		a.Logger.Warn("store fallback page", "path", page.Path, "error", err)
	}
	return view, nil
}

func (a *App) handleSitemap(c echo.Context) error {
	if ok, err := a.serveStored(c, "/sitemap.xml"); ok || err != nil {
		return err
	}
	if err := a.allowFetch(c); err != nil {
		return err
	}
	posts, err := a.allPosts(c.Request().Context())
	if err != nil {
		return contentError(err)
	}
	b, err := sitemapXML(a.Config.URL, posts)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, mimeXML, b)
}

func (a *App) handleFeed(c echo.Context) error {
	if ok, err := a.serveStored(c, "/feed.xml"); ok || err != nil {
		return err
	}
	if err := a.allowFetch(c); err != nil {
		return err
	}
	posts, err := a.allPosts(c.Request().Context())
	if err != nil {
		return contentError(err)
	}
	b, err := feedXML(a.Config, posts)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, mimeRSS, b)
}

func (a *App) handleBanner(c echo.Context) error {
	if ok, err := a.serveStored(c, bannersPrefix+c.Param("name")); ok || err != nil {
		return err
	}
	return echo.ErrNotFound
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nSitemap: "+a.Config.URL+"/sitemap.xml\n")
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// contentError maps content API failures onto HTTP errors.
func contentError(err error) error {
	var apiErr *prismic.APIError
	switch {
	case errors.Is(err, prismic.ErrNotFound):
		return echo.ErrNotFound.WithInternal(err)
	case errors.Is(err, prismic.ErrForeignCursor):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor").WithInternal(err)
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout).WithInternal(err)
	case errors.As(err, &apiErr):
		return echo.NewHTTPError(http.StatusBadGateway).WithInternal(err)
	default:
		return err
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "error", err, "uri", c.Request().RequestURI)
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
