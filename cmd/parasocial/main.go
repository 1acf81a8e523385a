// Command parasocial discovers Substack friend candidates for a user by
// scanning the audiences of their nichest subscriptions and scoring people
// by weighted subscription overlap.
//
// Usage:
//
//	parasocial somehandle
//	parasocial -min-overlap 3 -require-bio somehandle
//	parasocial -json somehandle > matches.json
//
// Audience fetches need a Substack session: log into substack.com in
// Firefox or Chrome, or set SUBSTACK_SID / SUBSTACK_COOKIES.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeGROOVE-dev/parasocial/pkg/auth"
	"github.com/codeGROOVE-dev/parasocial/pkg/finder"
	"github.com/codeGROOVE-dev/parasocial/pkg/httpcache"
	"github.com/codeGROOVE-dev/parasocial/pkg/report"
	"github.com/codeGROOVE-dev/parasocial/pkg/score"
	"github.com/codeGROOVE-dev/parasocial/pkg/substack"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	jsonOut := flag.Bool("json", false, "emit the full result as JSON instead of a report")
	noBrowser := flag.Bool("no-browser", false, "disable reading cookies from browser stores (enabled by default)")
	noCache := flag.Bool("no-cache", false, "disable HTTP caching (enabled by default)")
	cacheTTL := flag.Duration("cache-ttl", 24*time.Hour, "cache time-to-live")
	maxNewsletters := flag.Int("max-newsletters", 5, "newsletters to scan, nichest first")
	perNewsletter := flag.Int("per-newsletter", 50, "people to sample per newsletter audience list")
	minOverlap := flag.Int("min-overlap", 2, "minimum shared newsletters for a match")
	requireBio := flag.Bool("require-bio", false, "only match people with a bio")
	requirePublication := flag.Bool("require-publication", false, "only match people who write a publication")
	limit := flag.Int("limit", 20, "matches to display (JSON output is never truncated)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: parasocial [options] <handle>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	handle := strings.TrimPrefix(flag.Arg(0), "@")

	// Optional; used for SUBSTACK_SID / SUBSTACK_COOKIES.
	_ = godotenv.Load()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, handle, logger, options{
		jsonOut:   *jsonOut,
		noBrowser: *noBrowser,
		noCache:   *noCache,
		cacheTTL:  *cacheTTL,
		limit:     *limit,
		find: finder.Options{
			MaxNewsletters: *maxNewsletters,
			PerNewsletter:  *perNewsletter,
			Filters: score.Filters{
				MinOverlap:         *minOverlap,
				RequireBio:         *requireBio,
				RequirePublication: *requirePublication,
			},
		},
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	jsonOut   bool
	noBrowser bool
	noCache   bool
	cacheTTL  time.Duration
	limit     int
	find      finder.Options
}

func run(ctx context.Context, handle string, logger *slog.Logger, opts options) error {
	var httpCache *httpcache.Cache
	if !opts.noCache {
		var err error
		httpCache, err = httpcache.New(opts.cacheTTL)
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		} else {
			defer func() {
				if err := httpCache.Close(); err != nil {
					logger.Warn("failed to close cache", "error", err)
				}
			}()
			logger.Debug("HTTP cache initialized", "ttl", opts.cacheTTL.String())
		}
	}

	sources := []auth.Source{auth.EnvSource{}}
	if !opts.noBrowser {
		sources = append(sources, auth.NewBrowserSource(logger))
	}
	cookies, err := auth.ChainSources(ctx, sources...)
	if err != nil {
		logger.Warn("no session cookies found, audience data will be unavailable", "error", err)
	}

	clientOpts := []substack.Option{
		substack.WithLogger(logger),
		substack.WithCookies(cookies),
	}
	if httpCache != nil {
		clientOpts = append(clientOpts, substack.WithHTTPCache(httpCache))
	}
	client, err := substack.New(ctx, clientOpts...)
	if err != nil {
		return err
	}
	if !client.Authenticated() {
		logger.Warn("running unauthenticated; audience fetches will fail")
	}

	res, err := finder.New(client, logger).Find(ctx, handle, opts.find)
	if err != nil {
		return err
	}

	stats := httpcache.CacheStats()
	logger.Debug("cache stats", "hits", stats.Hits, "misses", stats.Misses)

	if opts.jsonOut {
		return report.JSON(os.Stdout, res)
	}
	return report.Text(os.Stdout, res, opts.limit)
}
