package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/harukit/sitegrep/internal/model"
)

// Traversal errors.
var (
	// ErrSkipLimitExceeded is returned by Run when the skip count surpasses
	// the configured limit. The Result returned alongside it still carries
	// the counts accumulated up to the abort.
	ErrSkipLimitExceeded = errors.New("skip limit exceeded")

	// ErrEngineReused is returned when Run is called on an Engine that has
	// already run. Engines are single-use.
	ErrEngineReused = errors.New("engine already ran: create a new engine per traversal")
)

// Fetcher retrieves a page by URL. A failed fetch (network error,
// non-success status, or non-page content type) is reported as an error
// and treated as a skip by the Engine.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*model.Page, error)
}

// Extractor turns a fetched page into a Document: its searchable text, its
// outbound links in order, and its image references. A parse failure is
// treated identically to a fetch failure.
type Extractor interface {
	Extract(page *model.Page) (*model.Document, error)
}

// Sink receives matches as the Engine finds them. OnMatch is called in text
// search mode, OnImage in image mode; downloading image bytes is the sink's
// responsibility, not the Engine's.
type Sink interface {
	OnMatch(ctx context.Context, m Match) error
	OnImage(ctx context.Context, img model.ImageRef) error
}

// State is the lifecycle state of an Engine.
type State string

// Engine lifecycle states. Completed and Aborted are terminal; Aborted is
// reached only by skip-ceiling exhaustion.
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Config holds the traversal settings for one run. It is immutable for the
// run's lifetime.
type Config struct {
	// BaseURL is the URL the traversal starts from.
	BaseURL string

	// SinglePage restricts the entire run to the base URL: the base page is
	// fetched and evaluated, and no links are followed, not even the ones
	// found on that page.
	SinglePage bool

	// SkipLimit is the shared ceiling for tolerated anomalies. Must be
	// non-negative. The run aborts on the skip that surpasses the limit.
	SkipLimit int

	// SameHostOnly restricts recursion to links on the base URL's host.
	// Off-host links are filtered when discovered and are not skips.
	SameHostOnly bool
}

// Result summarizes a finished (or aborted) run.
type Result struct {
	// State is the terminal state of the run.
	State State

	// PagesVisited is the number of pages successfully fetched and parsed.
	PagesVisited int

	// Matches is the number of matches emitted to the sink.
	Matches int

	// Skips is the number of tolerated anomalies recorded.
	Skips int
}

// Engine walks the link graph from a base URL, applying a task predicate to
// every page it visits and emitting matches to a sink. See the package
// documentation for the traversal model.
type Engine struct {
	cfg       Config
	base      *url.URL
	fetcher   Fetcher
	extractor Extractor
	predicate Predicate
	sink      Sink
	logger    *slog.Logger

	state    State
	visited  *VisitedSet
	frontier *Frontier
	skips    *SkipCounter

	pagesVisited int
	matches      int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for per-URL traversal events.
// Defaults to slog.Default.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine validates the configuration and builds an Engine in the Idle
// state with its frontier seeded with the base URL.
//
// Configuration errors are fatal and surface here, before any traversal
// begins: an Engine is never initialized with invalid config.
func NewEngine(cfg Config, fetcher Fetcher, extractor Extractor, predicate Predicate, sink Sink, opts ...EngineOption) (*Engine, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", cfg.BaseURL)
	}
	if cfg.SkipLimit < 0 {
		return nil, fmt.Errorf("invalid skip limit %d: must be non-negative", cfg.SkipLimit)
	}
	if fetcher == nil || extractor == nil || predicate == nil || sink == nil {
		return nil, errors.New("fetcher, extractor, predicate, and sink are all required")
	}

	e := &Engine{
		cfg:       cfg,
		base:      base,
		fetcher:   fetcher,
		extractor: extractor,
		predicate: predicate,
		sink:      sink,
		state:     StateIdle,
		visited:   NewVisitedSet(),
		frontier:  NewFrontier(),
		skips:     NewSkipCounter(cfg.SkipLimit),
	}
	e.frontier.Push(cfg.BaseURL)

	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e, nil
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Run executes the traversal until the frontier is exhausted, the skip
// ceiling is surpassed, or the context is cancelled.
//
// On normal completion Run returns a Result with State Completed and a nil
// error. When the skip ceiling is surpassed it returns the partial Result
// with State Aborted and ErrSkipLimitExceeded. On cancellation it returns
// the partial Result and the context's error.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.state != StateIdle {
		return nil, ErrEngineReused
	}
	e.state = StateRunning

	for !e.frontier.Empty() {
		select {
		case <-ctx.Done():
			return e.result(), ctx.Err()
		default:
		}

		pageURL := e.frontier.Pop()

		// A duplicate pop is a skip, never a re-fetch.
		if e.visited.Contains(pageURL) {
			e.logger.Debug("skipping visited URL", "url", pageURL)
			if e.skips.Record() {
				return e.abort()
			}
			continue
		}
		e.visited.Mark(pageURL)

		page, err := e.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			e.logger.Debug("fetch failed", "url", pageURL, "error", err)
			if e.skips.Record() {
				return e.abort()
			}
			continue
		}

		doc, err := e.extractor.Extract(page)
		if err != nil {
			e.logger.Debug("parse failed", "url", pageURL, "error", err)
			if e.skips.Record() {
				return e.abort()
			}
			continue
		}
		e.pagesVisited++
		e.logger.Debug("visited page",
			"url", pageURL,
			"links", len(doc.Links),
			"images", len(doc.Images),
		)

		for _, m := range e.predicate.Evaluate(doc) {
			e.matches++
			if err := e.emit(ctx, m); err != nil {
				// Sink failures don't undo the match; the page content
				// did contain the needle.
				e.logger.Warn("result sink error", "url", m.PageURL, "error", err)
			}
		}

		if e.cfg.SinglePage {
			break
		}

		// Append in discovery order; duplicates are resolved at pop time.
		for _, link := range doc.Links {
			if e.cfg.SameHostOnly && !e.sameHost(link) {
				continue
			}
			e.frontier.Push(link)
		}
	}

	e.state = StateCompleted
	return e.result(), nil
}

// emit routes a match to the appropriate sink callback.
func (e *Engine) emit(ctx context.Context, m Match) error {
	if m.Image != nil {
		return e.sink.OnImage(ctx, *m.Image)
	}
	return e.sink.OnMatch(ctx, m)
}

// abort transitions the engine to the terminal Aborted state.
func (e *Engine) abort() (*Result, error) {
	e.state = StateAborted
	e.logger.Warn("maximum skipped links limit reached",
		"skips", e.skips.Count(),
		"limit", e.skips.Limit(),
	)
	return e.result(), ErrSkipLimitExceeded
}

// result snapshots the run counters.
func (e *Engine) result() *Result {
	return &Result{
		State:        e.state,
		PagesVisited: e.pagesVisited,
		Matches:      e.matches,
		Skips:        e.skips.Count(),
	}
}

// sameHost reports whether the link points at the base URL's host.
// Comparison includes the port so that two services on one machine are
// treated as distinct sites.
func (e *Engine) sameHost(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, e.base.Host)
}
