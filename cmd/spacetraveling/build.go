package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/views"
)

var (
	outDir          string
	localizeBanners bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render every page into the page store",
	Long: `build fetches the listing page, every post, the sitemap and the feed
from the content API and replaces the page store with the result. A failed
fetch aborts the build and leaves the previous pages in place.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&outDir, "out", "", "also export the site as static files into this directory")
	buildCmd.Flags().BoolVar(&localizeBanners, "localize-banners", false, "download and resize post banners into the site")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := spacetraveling.New(cfg, views.New(), spacetraveling.WithLogger(logger))
	defer app.Close()
	if err := app.Init(); err != nil {
		return err
	}

	writers := []spacetraveling.PageWriter{app.Pages}
	if outDir != "" {
		writers = append(writers, spacetraveling.DirWriter{Dir: outDir})
	}

	report, err := app.Build(ctx, spacetraveling.BuildOptions{
		LocalizeBanners: localizeBanners,
		Writers:         writers,
	})
	if err != nil {
		return err
	}
	logger.Info("build finished",
		"pages", report.Pages,
		"posts", report.Posts,
		"banners", report.Banners,
		"duration_ms", report.Duration.Milliseconds(),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "built %d pages (%d posts) in %s\n", report.Pages, report.Posts, report.Duration.Round(time.Millisecond))
	return nil
}
