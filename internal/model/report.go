package model

import "time"

// Mode identifies which task a crawl run performed.
type Mode string

// Crawl modes.
const (
	// ModeSearch greps page text for a literal string.
	ModeSearch Mode = "search"

	// ModeImages collects images whose alt text matches a literal string.
	ModeImages Mode = "images"
)

// CrawlReport is the result of one traversal run over one base URL.
//
// Design decision: We keep a single flat struct covering both modes rather
// than separate report types. The report writers and the history database
// handle both modes uniformly, and the unused slice simply stays empty.
type CrawlReport struct {
	// BaseURL is the URL the traversal started from.
	BaseURL string `json:"base_url"`

	// Mode is the task performed (search or images).
	Mode Mode `json:"mode"`

	// Needle is the literal string searched for. In images mode an empty
	// needle means every image matched.
	Needle string `json:"needle"`

	// CaseInsensitive reports whether matching ignored case.
	CaseInsensitive bool `json:"case_insensitive"`

	// SinglePage reports whether recursion was suppressed.
	SinglePage bool `json:"single_page"`

	// SkipLimit is the configured skip ceiling for the run.
	SkipLimit int `json:"skip_limit"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// PagesVisited is the number of pages successfully fetched and parsed.
	PagesVisited int `json:"pages_visited"`

	// SkipCount is the number of tolerated anomalies (duplicate URLs and
	// fetch/parse failures) recorded during the run.
	SkipCount int `json:"skip_count"`

	// Aborted is true when the run stopped because the skip count
	// exceeded the configured limit, false on normal completion.
	Aborted bool `json:"aborted"`

	// Error holds a run-level error message, if any.
	Error string `json:"error,omitempty"`

	// Matches lists the pages whose text contained the needle (search mode).
	Matches []TextMatch `json:"matches,omitempty"`

	// Images lists the images collected during the run (images mode).
	Images []ImageResult `json:"images,omitempty"`
}

// TextMatch records one page whose text contained the search string.
type TextMatch struct {
	// PageURL is the URL of the matching page.
	PageURL string `json:"page_url"`

	// Title is the page title, when one was present.
	Title string `json:"title,omitempty"`
}

// ImageResult records one collected image.
type ImageResult struct {
	// PageURL is the page the image was found on.
	PageURL string `json:"page_url"`

	// SourceURL is the image URL.
	SourceURL string `json:"source_url"`

	// AltText is the image's alternate text.
	AltText string `json:"alt_text,omitempty"`

	// SavedPath is the local file the image bytes were written to.
	// Empty when the download failed.
	SavedPath string `json:"saved_path,omitempty"`

	// ByteSize is the size of the downloaded image in bytes.
	ByteSize int64 `json:"byte_size,omitempty"`

	// EXIF summarizes interesting EXIF tags found in the image when EXIF
	// inspection was enabled (tag name -> value).
	EXIF map[string]string `json:"exif,omitempty"`
}

// NewCrawlReport creates a report for a run that is about to start.
func NewCrawlReport(baseURL string, mode Mode) *CrawlReport {
	return &CrawlReport{
		BaseURL:   baseURL,
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

// MatchCount returns the number of results the run produced: matched pages
// in search mode, collected images in images mode.
func (r *CrawlReport) MatchCount() int {
	if r.Mode == ModeImages {
		return len(r.Images)
	}
	return len(r.Matches)
}

// Found reports whether the run produced at least one result.
func (r *CrawlReport) Found() bool {
	return r.MatchCount() > 0
}

// Duration returns the wall-clock duration of the run.
func (r *CrawlReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
