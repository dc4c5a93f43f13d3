package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harukit/sitegrep/internal/config"
	"github.com/harukit/sitegrep/internal/crawler"
	"github.com/harukit/sitegrep/internal/model"
)

// newTestSite serves a small three-page site with one matching page and
// a gallery of images.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		}
	}

	mux.HandleFunc("/", page(`<html><head><title>Home</title></head>
		<body><a href="/about">about</a><a href="/gallery">gallery</a></body></html>`))
	mux.HandleFunc("/about", page(`<html><head><title>About</title></head>
		<body>say hello to the team</body></html>`))
	mux.HandleFunc("/gallery", page(`<html><head><title>Gallery</title></head>
		<body><img src="/cat.jpg" alt="a sleepy cat"><img src="/dog.png" alt="a dog"></body></html>`))
	mux.HandleFunc("/cat.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		fmt.Fprint(w, "jpeg-bytes")
	})
	mux.HandleFunc("/dog.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "png-bytes")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestConfig(t *testing.T, target string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Mode = model.ModeSearch
	cfg.Targets = []string{target}
	cfg.Needle = "hello"
	cfg.Timeout = 5 * time.Second
	cfg.DBDir = t.TempDir()
	return cfg
}

func newTestRunner(t *testing.T, cfg *config.Config) (*Runner, *bytes.Buffer) {
	t.Helper()

	console := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r, err := New(cfg, logger, WithConsoleWriter(console))
	if err != nil {
		t.Fatalf("failed to create runner: %v", err)
	}
	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Errorf("failed to close runner: %v", err)
		}
	})
	return r, console
}

// TestRunTargetSearch tests a full text-search run against a live test site.
func TestRunTargetSearch(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	cfg := newTestConfig(t, srv.URL)
	r, console := newTestRunner(t, cfg)

	report, err := r.RunTarget(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("RunTarget failed: %v", err)
	}

	if report.PagesVisited != 3 {
		t.Errorf("PagesVisited = %d, want 3", report.PagesVisited)
	}
	if !report.Found() {
		t.Error("run should have found the needle")
	}
	if len(report.Matches) != 1 || report.Matches[0].Title != "About" {
		t.Errorf("Matches = %+v", report.Matches)
	}
	if report.Aborted {
		t.Error("run should not be aborted")
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("FinishedAt should be after StartedAt")
	}
	if !strings.Contains(console.String(), "About") {
		t.Errorf("console output missing live match:\n%s", console.String())
	}

	t.Run("run is saved to history", func(t *testing.T) {
		runs, err := r.DB().ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("runs = %d, want 1", len(runs))
		}
		if runs[0].MatchCount != 1 || runs[0].BaseURL != srv.URL {
			t.Errorf("stored run = %+v", runs[0])
		}
	})
}

// TestRunTargetImages tests the image collection task end to end.
func TestRunTargetImages(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	cfg := newTestConfig(t, srv.URL)
	cfg.Mode = model.ModeImages
	cfg.Needle = "cat"
	cfg.ImageDir = t.TempDir()
	r, _ := newTestRunner(t, cfg)

	report, err := r.RunTarget(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("RunTarget failed: %v", err)
	}

	if len(report.Images) != 1 {
		t.Fatalf("Images = %d, want 1 (only the cat matches)", len(report.Images))
	}
	img := report.Images[0]
	if img.AltText != "a sleepy cat" {
		t.Errorf("AltText = %q", img.AltText)
	}
	if img.SavedPath == "" || img.ByteSize != int64(len("jpeg-bytes")) {
		t.Errorf("download not recorded: %+v", img)
	}
}

// TestRunTargetAbort tests that the skip limit aborts a run.
func TestRunTargetAbort(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><a href="/dead">dead</a></body></html>`)
	})
	mux.HandleFunc("/dead", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	cfg.SkipLimit = 0
	r, _ := newTestRunner(t, cfg)

	report, err := r.RunTarget(context.Background(), srv.URL)
	if !errors.Is(err, crawler.ErrSkipLimitExceeded) {
		t.Fatalf("expected ErrSkipLimitExceeded, got %v", err)
	}
	if !report.Aborted {
		t.Error("report should be marked aborted")
	}
	if report.Error != "" {
		t.Errorf("abort is not a runtime error, got %q", report.Error)
	}
	if report.PagesVisited != 1 {
		t.Errorf("PagesVisited = %d, want 1 (the base page)", report.PagesVisited)
	}
}

// TestRunTargetSiteConfig tests that per-host overrides reach the fetcher.
func TestRunTargetSiteConfig(t *testing.T) {
	t.Parallel()

	var gotCookie, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotCookie = req.Header.Get("Cookie")
		gotHeader = req.Header.Get("X-Team")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>hello</body></html>`)
	}))
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	cfg.SinglePage = true
	cfg.SiteConfigs = &config.File{
		Sites: map[string]config.SiteConfig{
			"127.0.0.1": {
				Cookie:  "session=abc",
				Headers: map[string]string{"X-Team": "qa"},
			},
		},
	}
	r, _ := newTestRunner(t, cfg)

	if _, err := r.RunTarget(context.Background(), srv.URL); err != nil {
		t.Fatalf("RunTarget failed: %v", err)
	}
	if gotCookie != "session=abc" {
		t.Errorf("Cookie = %q", gotCookie)
	}
	if gotHeader != "qa" {
		t.Errorf("X-Team = %q", gotHeader)
	}
}

// TestRunAll tests concurrent multi-target runs.
func TestRunAll(t *testing.T) {
	t.Parallel()

	srvA := newTestSite(t)
	srvB := newTestSite(t)

	cfg := newTestConfig(t, srvA.URL)
	cfg.Targets = []string{srvA.URL, srvB.URL}
	cfg.BatchSize = 2
	r, _ := newTestRunner(t, cfg)

	reports, err := r.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}

	// Reports keep target order regardless of completion order.
	if reports[0].BaseURL != srvA.URL || reports[1].BaseURL != srvB.URL {
		t.Errorf("reports out of order: %s, %s", reports[0].BaseURL, reports[1].BaseURL)
	}
	for _, rep := range reports {
		if !rep.Found() {
			t.Errorf("target %s should have found the needle", rep.BaseURL)
		}
	}
}

// TestRunAllCancelledMidBatch tests that cancellation surfaces as the
// batch error while the reports of already-finished targets survive, so
// callers can still show partial results.
func TestRunAllCancelledMidBatch(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)

	// The trap target cancels the context while it is being crawled; with
	// batch size 1 the first target is already done and the third has not
	// started.
	ctx, cancel := context.WithCancel(context.Background())
	trap := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		cancel()
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	defer trap.Close()

	cfg := newTestConfig(t, srv.URL)
	cfg.Targets = []string{srv.URL, trap.URL, srv.URL + "/about"}
	cfg.BatchSize = 1
	r, _ := newTestRunner(t, cfg)

	reports, err := r.RunAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("reports = %d, want 3", len(reports))
	}
	if reports[0] == nil || !reports[0].Found() {
		t.Errorf("finished target's report lost: %+v", reports[0])
	}
	if reports[2] != nil {
		t.Errorf("unstarted target should have no report, got %+v", reports[2])
	}
}

// TestRunTargetImageDownloadFailure tests that a matched image whose
// download fails still appears in the report, without a saved path.
func TestRunTargetImageDownloadFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
			<img src="/cat.jpg" alt="a sleepy cat">
			<img src="/lost.jpg" alt="a lost cat">
		</body></html>`)
	})
	mux.HandleFunc("/cat.jpg", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "jpeg-bytes")
	})
	mux.HandleFunc("/lost.jpg", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	cfg.Mode = model.ModeImages
	cfg.Needle = "cat"
	cfg.ImageDir = t.TempDir()
	r, _ := newTestRunner(t, cfg)

	report, err := r.RunTarget(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("RunTarget failed: %v", err)
	}

	if len(report.Images) != 2 {
		t.Fatalf("Images = %d, want 2 (a failed download still matched)", len(report.Images))
	}
	saved := map[string]string{}
	for _, img := range report.Images {
		saved[img.AltText] = img.SavedPath
	}
	if saved["a sleepy cat"] == "" {
		t.Error("successful download should record a saved path")
	}
	if saved["a lost cat"] != "" {
		t.Errorf("failed download should have no saved path, got %q", saved["a lost cat"])
	}
}

// TestRunAllContinuesPastFailures tests that one bad target doesn't stop
// the batch.
func TestRunAllContinuesPastFailures(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)

	cfg := newTestConfig(t, srv.URL)
	cfg.Targets = []string{"http://127.0.0.1:1/", srv.URL}
	cfg.SkipLimit = 5
	r, _ := newTestRunner(t, cfg)

	reports, err := r.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	if reports[0].Found() {
		t.Error("unreachable target should have no results")
	}
	if !reports[1].Found() {
		t.Error("healthy target should still have run")
	}
}

// TestNewValidatesConfig tests that invalid config is rejected up front.
func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	// No targets, no needle.
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected validation error")
	}
}
