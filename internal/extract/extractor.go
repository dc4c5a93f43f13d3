package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/harukit/sitegrep/internal/model"
)

// ErrUnsupportedContent is returned when a page's content type is not HTML.
// The traversal engine treats it like any other parse failure (a skip).
var ErrUnsupportedContent = errors.New("unsupported content type")

// Extractor parses HTML pages. It is stateless and safe to share across
// engines.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the page body and returns its document form. Relative
// link and image URLs are resolved against the page URL; links that cannot
// navigate anywhere (javascript:, mailto:, tel:, data:, bare fragments)
// are dropped.
func (x *Extractor) Extract(page *model.Page) (*model.Document, error) {
	if !page.IsHTML() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedContent, page.URL, page.ContentType)
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", page.URL, err)
	}

	root, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", page.URL, err)
	}

	doc := &model.Document{
		PageURL: page.URL,
		Title:   strings.TrimSpace(root.Find("title").First().Text()),
	}

	root.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if resolved := resolveURL(base, href); resolved != "" {
			doc.Links = append(doc.Links, resolved)
		}
	})

	root.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}
		resolved := resolveURL(base, src)
		if resolved == "" {
			return
		}
		alt, _ := sel.Attr("alt")
		doc.Images = append(doc.Images, model.ImageRef{
			PageURL:   page.URL,
			SourceURL: resolved,
			AltText:   alt,
		})
	})

	// Text is taken after dropping script/style subtrees so that inline
	// JavaScript and CSS never produce false matches. Whitespace runs are
	// collapsed so a needle can match across line breaks in the markup.
	root.Find("script, style, noscript").Remove()
	text := root.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = root.Text()
	}
	doc.Text = strings.Join(strings.Fields(text), " ")

	return doc, nil
}

// resolveURL resolves href against the page's base URL, dropping values
// that cannot be crawled.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
