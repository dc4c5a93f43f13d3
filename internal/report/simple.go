package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harukit/sitegrep/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Live color output is the console sink's job, not the report's
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no results are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeMatches(&sb, report)
	w.writeImages(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SITEGREP REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Base URL:       %s\n", report.BaseURL))
	sb.WriteString(fmt.Sprintf("Task:           %s\n", report.Mode))
	if report.Needle != "" {
		sb.WriteString(fmt.Sprintf("Search String:  %q\n", report.Needle))
	}
	sb.WriteString(fmt.Sprintf("Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", report.Duration().Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Status:         %s\n", w.statusText(report)))
	sb.WriteString("\n")
}

// statusText returns the status line based on report state.
func (w *SimpleWriter) statusText(report *model.CrawlReport) string {
	switch {
	case report.Aborted:
		return "ABORTED (skip limit exceeded, partial results)"
	case report.Error != "":
		return "ERROR - " + report.Error
	default:
		return "Complete"
	}
}

// writeSummary writes the traversal summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TRAVERSAL SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  PAGES VISITED: %d\n", report.PagesVisited))
	sb.WriteString(fmt.Sprintf("  SKIPS:         %d (limit %d)\n", report.SkipCount, report.SkipLimit))
	sb.WriteString(fmt.Sprintf("  RESULTS:       %d\n", report.MatchCount()))
	sb.WriteString("\n")
}

// writeMatches writes the text match section.
func (w *SimpleWriter) writeMatches(sb *strings.Builder, report *model.CrawlReport) {
	if report.Mode != model.ModeSearch {
		return
	}
	if len(report.Matches) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("MATCHING PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Matches) == 0 {
		sb.WriteString("  No matching pages\n")
	} else {
		for _, m := range report.Matches {
			title := m.Title
			if title == "" {
				title = "(no title)"
			}
			sb.WriteString(fmt.Sprintf("  [+] %s\n", title))
			sb.WriteString(fmt.Sprintf("      %s\n", m.PageURL))
		}
	}
	sb.WriteString("\n")
}

// writeImages writes the collected images section.
func (w *SimpleWriter) writeImages(sb *strings.Builder, report *model.CrawlReport) {
	if report.Mode != model.ModeImages {
		return
	}
	if len(report.Images) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("COLLECTED IMAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Images) == 0 {
		sb.WriteString("  No images collected\n")
	} else {
		for _, img := range report.Images {
			alt := img.AltText
			if alt == "" {
				alt = "(no alt text)"
			}
			sb.WriteString(fmt.Sprintf("  [+] %s\n", alt))
			sb.WriteString(fmt.Sprintf("      Source: %s\n", img.SourceURL))
			if img.SavedPath != "" {
				sb.WriteString(fmt.Sprintf("      Saved:  %s (%d bytes)\n", img.SavedPath, img.ByteSize))
			}
			for tag, value := range img.EXIF {
				sb.WriteString(fmt.Sprintf("      EXIF %s: %s\n", tag, value))
			}
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitegrep\n")
	sb.WriteString("https://github.com/harukit/sitegrep\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
