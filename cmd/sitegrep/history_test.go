package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/harukit/sitegrep/internal/database"
	"github.com/harukit/sitegrep/internal/model"
)

func newHistoryDB(t *testing.T) *database.HistoryDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	started := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	report := &model.CrawlReport{
		BaseURL:      "https://example.com",
		Mode:         model.ModeSearch,
		Needle:       "hello",
		StartedAt:    started,
		FinishedAt:   started.Add(time.Second),
		PagesVisited: 3,
		Matches:      []model.TextMatch{{PageURL: "https://example.com/about", Title: "About"}},
	}
	if _, err := db.SaveReport(context.Background(), report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	return db
}

// newOutputCmd returns a throwaway command whose output is captured.
func newOutputCmd() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetContext(context.Background())
	return cmd, buf
}

// TestListRuns tests the history table output.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := newHistoryDB(t)
	cmd, buf := newOutputCmd()

	if err := listRuns(cmd, db, 20); err != nil {
		t.Fatalf("listRuns failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"TARGET", "https://example.com", "hello", "complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestShowRun tests the full-report JSON output.
func TestShowRun(t *testing.T) {
	t.Parallel()

	db := newHistoryDB(t)

	t.Run("existing run", func(t *testing.T) {
		t.Parallel()

		cmd, buf := newOutputCmd()
		if err := showRun(cmd, db, 1); err != nil {
			t.Fatalf("showRun failed: %v", err)
		}
		if !strings.Contains(buf.String(), "https://example.com/about") {
			t.Errorf("stored match missing from output:\n%s", buf.String())
		}
	})

	t.Run("missing run", func(t *testing.T) {
		t.Parallel()

		cmd, _ := newOutputCmd()
		if err := showRun(cmd, db, 9999); err == nil {
			t.Error("expected error for missing run")
		}
	})
}

// TestShowLatest tests the most-recent-report lookup by base URL.
func TestShowLatest(t *testing.T) {
	t.Parallel()

	db := newHistoryDB(t)

	t.Run("recorded base URL", func(t *testing.T) {
		t.Parallel()

		cmd, buf := newOutputCmd()
		if err := showLatest(cmd, db, "https://example.com"); err != nil {
			t.Fatalf("showLatest failed: %v", err)
		}
		if !strings.Contains(buf.String(), "https://example.com/about") {
			t.Errorf("stored match missing from output:\n%s", buf.String())
		}
	})

	t.Run("unknown base URL", func(t *testing.T) {
		t.Parallel()

		cmd, _ := newOutputCmd()
		if err := showLatest(cmd, db, "https://never-crawled.example"); err == nil {
			t.Error("expected error for unknown base URL")
		}
	})
}
