package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/harukit/sitegrep/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeMatches(md, report)
	w.writeImages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("sitegrep Report")
	md.PlainText("")

	rows := [][]string{
		{"Base URL", "`" + report.BaseURL + "`"},
		{"Task", string(report.Mode)},
	}
	if report.Needle != "" {
		rows = append(rows, []string{"Search String", "`" + report.Needle + "`"})
	}
	rows = append(rows,
		[]string{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Status", w.statusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText returns the status text based on report state.
func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	if report.Aborted {
		return "⚠️ Aborted (skip limit exceeded, partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the traversal summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Traversal Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages Visited", strconv.Itoa(report.PagesVisited)},
			{"Skips", strconv.Itoa(report.SkipCount)},
			{"Skip Limit", strconv.Itoa(report.SkipLimit)},
			{"Results", strconv.Itoa(report.MatchCount())},
		},
	})
	md.PlainText("")

	if report.PagesVisited > 0 || report.SkipCount > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of visited versus skipped links.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CrawlReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Traversal Outcome"),
		piechart.WithShowData(true),
	)

	if report.PagesVisited > 0 {
		chart.LabelAndIntValue("Visited", uint64(report.PagesVisited))
	}
	if report.SkipCount > 0 {
		chart.LabelAndIntValue("Skipped", uint64(report.SkipCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	switch {
	case report.Aborted:
		md.Warningf(
			"The crawl aborted after %d skips; results cover only the pages visited before the limit was exceeded.",
			report.SkipCount,
		)
	case report.MatchCount() > 0:
		md.Tip(fmt.Sprintf("%d result(s) found across %d page(s).", report.MatchCount(), report.PagesVisited))
	default:
		md.Note("No results found.")
	}
	md.PlainText("")
}

// writeMatches writes the matching pages section.
func (w *MarkdownWriter) writeMatches(md *markdown.Markdown, report *model.CrawlReport) {
	if report.Mode != model.ModeSearch {
		return
	}

	md.H2("Matching Pages")
	md.PlainText("")

	if len(report.Matches) == 0 {
		md.PlainText("No matching pages.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Matches))
	for i, m := range report.Matches {
		title := m.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{truncateString(title, 60), m.PageURL}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeImages writes the collected images section.
func (w *MarkdownWriter) writeImages(md *markdown.Markdown, report *model.CrawlReport) {
	if report.Mode != model.ModeImages {
		return
	}

	md.H2("Collected Images")
	md.PlainText("")

	if len(report.Images) == 0 {
		md.PlainText("No images collected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Images))
	for i, img := range report.Images {
		alt := img.AltText
		if alt == "" {
			alt = "-"
		}
		saved := img.SavedPath
		if saved == "" {
			saved = "-"
		}
		rows[i] = []string{
			truncateString(alt, 40),
			img.SourceURL,
			saved,
			strconv.FormatInt(img.ByteSize, 10),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Alt Text", "Source", "Saved As", "Bytes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitegrep](https://github.com/harukit/sitegrep)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
