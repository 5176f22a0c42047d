package spacetraveling

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	mimeHTML = "text/html; charset=utf-8"
	mimeJPEG = "image/jpeg"
)

// PageWriter persists the pages of a build. Implementations must write all
// of pages or none of them.
type PageWriter interface {
	WritePages(ctx context.Context, pages []Page) error
}

// BuildOptions tunes a Build.
type BuildOptions struct {
	// LocalizeBanners downloads post banners, resizes them and serves them
	// from the site instead of the CMS image host.
	LocalizeBanners bool
	// Writers receive the built pages in order. Empty means the App's Store.
	Writers []PageWriter
}

// BuildReport summarizes a finished build.
type BuildReport struct {
	Pages    int
	Posts    int
	Banners  int
	Duration time.Duration
}

// Build fetches every page's data from the content API, renders the site
// and hands the pages to the writers. Any fetch or render error aborts the
// build before anything is written.
func (a *App) Build(ctx context.Context, opts BuildOptions) (BuildReport, error) {
	start := time.Now()
	if err := a.Init(); err != nil {
		return BuildReport{}, err
	}
	writers := opts.Writers
	if len(writers) == 0 {
		writers = []PageWriter{a.Pages}
	}

	listing, err := a.ListingProps(ctx)
	if err != nil {
		return BuildReport{}, fmt.Errorf("spacetraveling: build: %w", err)
	}
	paths, err := a.PostPaths(ctx)
	if err != nil {
		return BuildReport{}, fmt.Errorf("spacetraveling: build: %w", err)
	}

	posts := make([]PostDetail, len(paths.UIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.BuildConcurrency)
	for i, uid := range paths.UIDs {
		g.Go(func() error {
			post, err := a.PostProps(gctx, uid)
			if err != nil {
				return err
			}
			posts[i] = post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BuildReport{}, fmt.Errorf("spacetraveling: build: %w", err)
	}

	var pages []Page
	report := BuildReport{Posts: len(posts)}

	if opts.LocalizeBanners {
		banners, err := a.localizeBanners(ctx, posts)
		if err != nil {
			return BuildReport{}, fmt.Errorf("spacetraveling: build: %w", err)
		}
		pages = append(pages, banners...)
		report.Banners = len(banners)
	}

	home, err := renderBytes(ctx, a.Views.Home(a.homeView(listing)))
	if err != nil {
		return BuildReport{}, fmt.Errorf("spacetraveling: build: render home: %w", err)
	}
	pages = append(pages, Page{Path: "/", ContentType: mimeHTML, Body: home})

	summaries := make([]PostSummary, 0, len(posts))
	for _, post := range posts {
		body, err := renderBytes(ctx, a.Views.Post(a.postView(post)))
		if err != nil {
			return BuildReport{}, fmt.Errorf("spacetraveling: build: render %s: %w", PostPath(post.UID), err)
		}
		pages = append(pages, Page{Path: PostPath(post.UID), ContentType: mimeHTML, Body: body})
		summaries = append(summaries, summaryOf(post))
	}

	sitemap, err := sitemapXML(a.Config.URL, summaries)
	if err != nil {
		return BuildReport{}, fmt.Errorf("spacetraveling: build: sitemap: %w", err)
	}
	feed, err := feedXML(a.Config, summaries)
	if err != nil {
		return BuildReport{}, fmt.Errorf("spacetraveling: build: feed: %w", err)
	}
	pages = append(pages,
		Page{Path: "/sitemap.xml", ContentType: mimeXML, Body: sitemap},
		Page{Path: "/feed.xml", ContentType: mimeRSS, Body: feed},
	)

	builtAt := time.Now()
	for i := range pages {
		pages[i].BuiltAt = builtAt
	}
	for _, w := range writers {
		if err := w.WritePages(ctx, pages); err != nil {
			return BuildReport{}, fmt.Errorf("spacetraveling: build: write pages: %w", err)
		}
	}
	for _, p := range pages {
		a.Logger.Info("page built", "path", p.Path, "content_type", p.ContentType, "bytes", len(p.Body))
	}

	report.Pages = len(pages)
	report.Duration = time.Since(start)
	return report, nil
}

// localizeBanners downloads every banner and points each post at its local
// copy. posts is updated in place.
func (a *App) localizeBanners(ctx context.Context, posts []PostDetail) ([]Page, error) {
	found := make([]Page, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.BuildConcurrency)
	for i, post := range posts {
		if post.Banner == "" {
			continue
		}
		g.Go(func() error {
			page, err := a.localizeBanner(gctx, post)
			if err != nil {
				return err
			}
			found[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pages []Page
	for i, page := range found {
		if page.Path == "" {
			continue
		}
		posts[i].Banner = page.Path
		pages = append(pages, page)
	}
	return pages, nil
}
