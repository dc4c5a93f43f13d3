package crawler

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/harukit/sitegrep/internal/model"
)

// Match is a single result produced by a predicate for one page.
// For text search the match carries only the page URL and title; for image
// matching it additionally carries the image reference to download.
type Match struct {
	// PageURL is the URL of the page the match was found on.
	PageURL string

	// Title is the page title, when one was present.
	Title string

	// Image is the matched image reference, nil for text matches.
	Image *model.ImageRef
}

// Predicate evaluates an extracted document and returns the matches it
// contains. A predicate is selected once when the Engine is built and is
// invoked unchanged for the life of the run; implementations hold only
// read-only configuration.
type Predicate interface {
	// Name identifies the predicate for logging.
	Name() string

	// Evaluate returns the matches found in the document, in document order.
	Evaluate(doc *model.Document) []Match
}

// matcher performs literal substring matching with optional case folding.
//
// Design decision: case-insensitive mode uses golang.org/x/text/search
// rather than strings.ToLower on both sides because Unicode case folding
// is not a per-rune lowercase mapping (e.g. the Kelvin sign or dotless i),
// and the matcher handles those correctly.
type matcher struct {
	needle      string
	insensitive bool
	folded      *search.Matcher
}

func newMatcher(needle string, caseInsensitive bool) matcher {
	m := matcher{needle: needle, insensitive: caseInsensitive}
	if caseInsensitive {
		m.folded = search.New(language.Und, search.IgnoreCase)
	}
	return m
}

// contains reports whether needle occurs as a substring of text.
// An empty needle never matches; predicates that treat an empty needle as
// "match all" handle that before calling contains.
func (m matcher) contains(text string) bool {
	if m.needle == "" {
		return false
	}
	if m.insensitive {
		start, _ := m.folded.IndexString(text, m.needle)
		return start >= 0
	}
	return strings.Contains(text, m.needle)
}

// TextSearchPredicate matches pages whose text contains a literal string.
// The match is substring-based, not whole-word.
type TextSearchPredicate struct {
	matcher matcher
}

// NewTextSearchPredicate creates a predicate that matches pages whose text
// contains needle, folding case when caseInsensitive is true.
func NewTextSearchPredicate(needle string, caseInsensitive bool) *TextSearchPredicate {
	return &TextSearchPredicate{matcher: newMatcher(needle, caseInsensitive)}
}

// Name implements Predicate.
func (p *TextSearchPredicate) Name() string { return "text-search" }

// Evaluate returns at most one match per page: the page matches or it
// does not. The location of the occurrence within the text is not tracked.
func (p *TextSearchPredicate) Evaluate(doc *model.Document) []Match {
	if !p.matcher.contains(doc.Text) {
		return nil
	}
	return []Match{{PageURL: doc.PageURL, Title: doc.Title}}
}

// ImageMatchPredicate matches images whose alt text contains a literal
// string. An empty needle matches every image on every visited page.
type ImageMatchPredicate struct {
	matcher  matcher
	matchAll bool
}

// NewImageMatchPredicate creates a predicate that matches images whose alt
// text contains altNeedle. An empty altNeedle matches all images.
func NewImageMatchPredicate(altNeedle string, caseInsensitive bool) *ImageMatchPredicate {
	return &ImageMatchPredicate{
		matcher:  newMatcher(altNeedle, caseInsensitive),
		matchAll: altNeedle == "",
	}
}

// Name implements Predicate.
func (p *ImageMatchPredicate) Name() string { return "image-match" }

// Evaluate returns one match per qualifying image, in document order.
func (p *ImageMatchPredicate) Evaluate(doc *model.Document) []Match {
	var matches []Match
	for i := range doc.Images {
		img := doc.Images[i]
		if !p.matchAll && !p.matcher.contains(img.AltText) {
			continue
		}
		matches = append(matches, Match{
			PageURL: doc.PageURL,
			Title:   doc.Title,
			Image:   &img,
		})
	}
	return matches
}
