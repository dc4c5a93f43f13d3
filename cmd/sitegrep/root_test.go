package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/harukit/sitegrep/internal/crawler"
	"github.com/harukit/sitegrep/internal/model"
)

// executeCommand runs the root command with the given arguments and
// returns the combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// TestNewRootCmd tests the command tree structure.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	if cmd.Use != "sitegrep" {
		t.Errorf("Use = %q", cmd.Use)
	}
	if !cmd.SilenceUsage || !cmd.SilenceErrors {
		t.Error("root command should silence usage and errors")
	}

	want := map[string]bool{
		"search":  false,
		"images":  false,
		"history": false,
		"init":    false,
		"version": false,
	}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if cmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("persistent verbose flag missing")
	}
}

// TestCrawlOutcome tests the exit-state folding across targets.
func TestCrawlOutcome(t *testing.T) {
	t.Parallel()

	found := &model.CrawlReport{
		Mode:    model.ModeSearch,
		Matches: []model.TextMatch{{PageURL: "https://a.example/"}},
	}
	empty := &model.CrawlReport{Mode: model.ModeSearch}
	aborted := &model.CrawlReport{Mode: model.ModeSearch, Aborted: true}
	failed := &model.CrawlReport{Mode: model.ModeSearch, Error: "connection refused"}

	tests := []struct {
		name    string
		reports []*model.CrawlReport
		check   func(error) bool
	}{
		{
			name:    "found means success",
			reports: []*model.CrawlReport{found},
			check:   func(err error) bool { return err == nil },
		},
		{
			name:    "nothing found",
			reports: []*model.CrawlReport{empty},
			check:   func(err error) bool { return errors.Is(err, errNoResults) },
		},
		{
			name:    "abort wins over found",
			reports: []*model.CrawlReport{found, aborted},
			check:   func(err error) bool { return errors.Is(err, crawler.ErrSkipLimitExceeded) },
		},
		{
			name:    "runtime error wins over abort",
			reports: []*model.CrawlReport{aborted, failed},
			check: func(err error) bool {
				return err != nil &&
					!errors.Is(err, errNoResults) &&
					!errors.Is(err, crawler.ErrSkipLimitExceeded)
			},
		},
		{
			name:    "nil reports are skipped",
			reports: []*model.CrawlReport{nil, found},
			check:   func(err error) bool { return err == nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := crawlOutcome(tt.reports); !tt.check(err) {
				t.Errorf("crawlOutcome() = %v", err)
			}
		})
	}
}

// TestVersionCmd tests the version output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"sitegrep version", "commit:", "built:"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
