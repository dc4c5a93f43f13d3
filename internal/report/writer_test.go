package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harukit/sitegrep/internal/model"
)

func searchReport() *model.CrawlReport {
	started := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return &model.CrawlReport{
		BaseURL:      "https://example.com",
		Mode:         model.ModeSearch,
		Needle:       "hello",
		SkipLimit:    20,
		StartedAt:    started,
		FinishedAt:   started.Add(2 * time.Second),
		PagesVisited: 5,
		SkipCount:    2,
		Matches: []model.TextMatch{
			{PageURL: "https://example.com/about", Title: "About Us"},
			{PageURL: "https://example.com/faq", Title: ""},
		},
	}
}

func imagesReport() *model.CrawlReport {
	r := searchReport()
	r.Mode = model.ModeImages
	r.Needle = "cat"
	r.Matches = nil
	r.Images = []model.ImageResult{
		{
			PageURL:   "https://example.com/gallery",
			SourceURL: "https://example.com/cat.jpg",
			AltText:   "a cat",
			SavedPath: "sitegrep-images/cat.jpg",
			ByteSize:  1234,
		},
	}
	return r
}

// TestSimpleWriter tests the plain text format.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("search report", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		n, err := NewSimpleWriter(buf).Write(searchReport())
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"SITEGREP REPORT",
			"https://example.com",
			`"hello"`,
			"PAGES VISITED: 5",
			"SKIPS:         2 (limit 20)",
			"About Us",
			"https://example.com/faq",
			"(no title)",
			"Complete",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("aborted report shows status", func(t *testing.T) {
		t.Parallel()

		r := searchReport()
		r.Aborted = true

		buf := &bytes.Buffer{}
		if _, err := NewSimpleWriter(buf).Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "ABORTED") {
			t.Errorf("aborted status missing:\n%s", buf.String())
		}
	})

	t.Run("images report", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		if _, err := NewSimpleWriter(buf).Write(imagesReport()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"COLLECTED IMAGES", "a cat", "cat.jpg", "1234 bytes"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "MATCHING PAGES") {
			t.Error("images report should not contain the text match section")
		}
	})

	t.Run("empty sections hidden by default", func(t *testing.T) {
		t.Parallel()

		r := searchReport()
		r.Matches = nil

		buf := &bytes.Buffer{}
		if _, err := NewSimpleWriter(buf).Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if strings.Contains(buf.String(), "MATCHING PAGES") {
			t.Error("empty match section should be hidden")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(buf, WithShowEmpty(true)).Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "No matching pages") {
			t.Error("WithShowEmpty should show the empty section")
		}
	})
}

// TestJSONWriter tests the JSON format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round-trips", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		if _, err := NewJSONWriter(buf).Write(searchReport()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		var got model.CrawlReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.BaseURL != "https://example.com" || len(got.Matches) != 2 {
			t.Errorf("round trip lost data: %+v", got)
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("output should end with a newline")
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		if _, err := NewJSONWriter(buf, WithPrettyPrint()).Write(searchReport()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("pretty output should be indented")
		}
	})
}

// TestMarkdownWriter tests the Markdown format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("search report", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		if _, err := NewMarkdownWriter(buf).Write(searchReport()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# sitegrep Report",
			"## Traversal Summary",
			"## Matching Pages",
			"About Us",
			"mermaid",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("aborted report carries a warning", func(t *testing.T) {
		t.Parallel()

		r := searchReport()
		r.Aborted = true

		buf := &bytes.Buffer{}
		if _, err := NewMarkdownWriter(buf).Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "WARNING") {
			t.Errorf("warning alert missing:\n%s", buf.String())
		}
	})

	t.Run("images report", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		if _, err := NewMarkdownWriter(buf).Write(imagesReport()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "## Collected Images") || !strings.Contains(out, "cat.jpg") {
			t.Errorf("image section missing:\n%s", out)
		}
	})
}

// errorWriter always fails, for testing MultiWriter error handling.
type errorWriter struct{}

func (errorWriter) Write(*model.CrawlReport) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		buf1 := &bytes.Buffer{}
		buf2 := &bytes.Buffer{}
		mw := NewMultiWriter(NewSimpleWriter(buf1), NewJSONWriter(buf2))

		if _, err := mw.Write(searchReport()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if buf1.Len() == 0 || buf2.Len() == 0 {
			t.Error("both writers should receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		mw := NewMultiWriter(errorWriter{}, NewSimpleWriter(buf))

		if _, err := mw.Write(searchReport()); err == nil {
			t.Error("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("writers after the failure should not run")
		}
	})
}

// TestTruncateString tests table cell truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{in: "short", maxLen: 10, want: "short"},
		{in: "exactly-ten", maxLen: 11, want: "exactly-ten"},
		{in: "this is far too long", maxLen: 10, want: "this is..."},
		{in: "abc", maxLen: 2, want: "ab"},
	}

	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
