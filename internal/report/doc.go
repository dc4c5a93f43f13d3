// Package report provides output formatting for crawl results.
// Three formats are supported: plain text for terminal display, JSON for
// tool integration, and Markdown for documentation and sharing.
package report
