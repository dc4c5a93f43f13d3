package model

import (
	"strings"
	"time"
)

// Page represents a fetched web page before extraction.
// It holds the raw response data the extractor works on.
type Page struct {
	// URL is the full URL the page was fetched from.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of the response, extracted from the
	// Content-Type header for convenience.
	ContentType string `json:"content_type"`

	// Headers contains all HTTP response headers.
	Headers map[string][]string `json:"headers,omitempty"`

	// Body contains the raw response body, capped at the fetcher's
	// configured maximum body size.
	Body []byte `json:"-"`

	// FetchedAt is the time the fetch completed.
	FetchedAt time.Time `json:"fetched_at"`
}

// IsHTML reports whether the page's content type is HTML.
func (p *Page) IsHTML() bool {
	return strings.Contains(p.ContentType, "text/html") ||
		strings.Contains(p.ContentType, "application/xhtml+xml")
}

// Document is the extractor's view of a page: the searchable text,
// the outbound links in document order, and the image references.
type Document struct {
	// PageURL is the URL of the page the document was extracted from.
	PageURL string `json:"page_url"`

	// Title is the page title from the <title> tag, if any.
	Title string `json:"title,omitempty"`

	// Text is the visible text content of the page with scripts and
	// styles removed. Substring searches run against this field.
	Text string `json:"-"`

	// Links contains outbound link URLs, resolved against the page URL,
	// in order of appearance. Duplicates are preserved; deduplication is
	// the traversal engine's job.
	Links []string `json:"links,omitempty"`

	// Images contains image references in order of appearance.
	Images []ImageRef `json:"images,omitempty"`
}

// ImageRef describes a single image reference found on a page.
type ImageRef struct {
	// PageURL is the URL of the page the image was referenced from.
	PageURL string `json:"page_url"`

	// SourceURL is the resolved URL of the image itself.
	SourceURL string `json:"source_url"`

	// AltText is the image's alternate text. May be empty.
	AltText string `json:"alt_text,omitempty"`
}
