package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/harukit/sitegrep/internal/config"
	"github.com/harukit/sitegrep/internal/crawler"
	"github.com/harukit/sitegrep/internal/database"
	"github.com/harukit/sitegrep/internal/extract"
	"github.com/harukit/sitegrep/internal/fetch"
	"github.com/harukit/sitegrep/internal/model"
	"github.com/harukit/sitegrep/internal/sink"
)

// Runner executes crawl runs for a validated configuration. It owns the
// shared resources (history database, logger); each target still gets its
// own engine, fetcher, and sinks so no traversal state leaks between runs.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *database.HistoryDB
	console io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithConsoleWriter redirects the live match output. Defaults to stdout.
func WithConsoleWriter(w io.Writer) Option {
	return func(r *Runner) {
		r.console = w
	}
}

// New creates a Runner. The history database is opened here, once, when
// saving is enabled; per-target collaborators are built lazily in RunTarget.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		cfg:     cfg,
		logger:  logger,
		console: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("open history database: %w", err)
		}
		r.db = db
		logger.Debug("history database opened", "dir", cfg.DBDir)
	}

	return r, nil
}

// Close releases the Runner's shared resources.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// DB returns the history database, or nil when saving is disabled.
func (r *Runner) DB() *database.HistoryDB {
	return r.db
}

// RunTarget crawls one base URL and returns its report. The report is
// always returned, even for aborted or failed runs; the error mirrors the
// report's terminal state so callers can map it to an exit code.
func (r *Runner) RunTarget(ctx context.Context, target string) (*model.CrawlReport, error) {
	report := model.NewCrawlReport(target, r.cfg.Mode)
	report.Needle = r.cfg.Needle
	report.CaseInsensitive = r.cfg.CaseInsensitive
	report.SinglePage = r.cfg.SinglePage
	report.SkipLimit = r.cfg.SkipLimit

	runErr := r.crawl(ctx, target, report)
	report.FinishedAt = time.Now()

	if runErr != nil {
		report.Aborted = errors.Is(runErr, crawler.ErrSkipLimitExceeded)
		if !report.Aborted {
			report.Error = runErr.Error()
		}
	}

	if err := r.save(ctx, report); err != nil {
		r.logger.Error("failed to save run", "target", target, "error", err)
	}

	return report, runErr
}

// crawl builds the per-target collaborators and runs the engine, filling
// the report in place.
func (r *Runner) crawl(ctx context.Context, target string, report *model.CrawlReport) error {
	siteCfg, err := r.siteConfig(target)
	if err != nil {
		return err
	}

	skipLimit := r.cfg.SkipLimit
	if siteCfg.SkipLimit != nil {
		skipLimit = *siteCfg.SkipLimit
		report.SkipLimit = skipLimit
	}

	userAgent := r.cfg.UserAgent
	if siteCfg.UserAgent != "" {
		userAgent = siteCfg.UserAgent
	}

	fetcher, err := fetch.New(fetch.Options{
		Timeout:      r.cfg.Timeout,
		UserAgent:    userAgent,
		MaxBodySize:  r.cfg.MaxBodySize,
		ProxyAddress: r.cfg.ProxyAddress,
		Headers:      siteCfg.Headers,
		Cookie:       siteCfg.Cookie,
		Logger:       r.logger,
	})
	if err != nil {
		return err
	}

	recorder := sink.NewRecorder()
	sinks := []crawler.Sink{sink.NewConsole(r.console), recorder}

	var downloader *sink.ImageDownloader
	var predicate crawler.Predicate
	switch r.cfg.Mode {
	case model.ModeImages:
		downloader, err = sink.NewImageDownloader(sink.DownloadOptions{
			Dir:         r.cfg.ImageDir,
			Client:      fetcher.Client(),
			InspectEXIF: r.cfg.InspectEXIF,
			Logger:      r.logger,
		})
		if err != nil {
			return err
		}
		sinks = append(sinks, downloader)
		predicate = crawler.NewImageMatchPredicate(r.cfg.Needle, r.cfg.CaseInsensitive)
	default:
		predicate = crawler.NewTextSearchPredicate(r.cfg.Needle, r.cfg.CaseInsensitive)
	}

	engine, err := crawler.NewEngine(
		crawler.Config{
			BaseURL:      target,
			SinglePage:   r.cfg.SinglePage,
			SkipLimit:    skipLimit,
			SameHostOnly: true,
		},
		fetcher,
		extract.New(),
		predicate,
		sink.NewMulti(sinks...),
		crawler.WithLogger(r.logger),
	)
	if err != nil {
		return err
	}

	result, runErr := engine.Run(ctx)
	if result != nil {
		report.PagesVisited = result.PagesVisited
		report.SkipCount = result.Skips
	}
	report.Matches = recorder.Matches()
	if downloader != nil {
		report.Images = imageResults(recorder.Images(), downloader.Results())
	}

	return runErr
}

// imageResults folds the matched images and the completed downloads into
// report entries. Every matched image appears once; a match whose download
// failed keeps its entry, with an empty SavedPath.
func imageResults(matched []model.ImageRef, downloaded []model.ImageResult) []model.ImageResult {
	bySource := make(map[string]model.ImageResult, len(downloaded))
	for _, res := range downloaded {
		bySource[res.SourceURL] = res
	}

	results := make([]model.ImageResult, 0, len(matched))
	recorded := make(map[string]struct{}, len(matched))
	for _, img := range matched {
		if _, ok := recorded[img.SourceURL]; ok {
			continue
		}
		recorded[img.SourceURL] = struct{}{}

		if res, ok := bySource[img.SourceURL]; ok {
			results = append(results, res)
			continue
		}
		results = append(results, model.ImageResult{
			PageURL:   img.PageURL,
			SourceURL: img.SourceURL,
			AltText:   img.AltText,
		})
	}
	return results
}

// siteConfig resolves the per-host overrides for a target URL.
func (r *Runner) siteConfig(target string) (config.SiteConfig, error) {
	u, err := url.Parse(target)
	if err != nil {
		return config.SiteConfig{}, fmt.Errorf("invalid target %q: %w", target, err)
	}
	if r.cfg.SiteConfigs == nil {
		return config.SiteConfig{}, nil
	}
	return r.cfg.SiteConfigs.GetSiteConfig(u.Hostname()), nil
}

// save persists the report when history saving is enabled.
func (r *Runner) save(ctx context.Context, report *model.CrawlReport) error {
	if r.db == nil {
		return nil
	}

	id, err := r.db.SaveReport(ctx, report)
	if err != nil {
		return err
	}
	r.logger.Debug("run saved", "id", id, "target", report.BaseURL)
	return nil
}
