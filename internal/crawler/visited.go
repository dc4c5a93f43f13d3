package crawler

import (
	"net/url"
	"strings"
)

// VisitedSet remembers which URLs have been processed during one run.
// It only grows: URLs are never removed, and the set is discarded with the
// Engine when the run ends.
//
// The set is not safe for concurrent use. It is owned exclusively by one
// Engine, and the traversal is strictly sequential, so no locking is needed.
type VisitedSet struct {
	seen map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// Contains reports whether the URL has already been marked visited.
func (v *VisitedSet) Contains(pageURL string) bool {
	_, ok := v.seen[NormalizeURL(pageURL)]
	return ok
}

// Mark records the URL as visited. Marking an already-marked URL has no
// additional effect.
func (v *VisitedSet) Mark(pageURL string) {
	v.seen[NormalizeURL(pageURL)] = struct{}{}
}

// Len returns the number of unique URLs marked so far.
func (v *VisitedSet) Len() int {
	return len(v.seen)
}

// NormalizeURL normalizes a URL for visited-set comparison so that equal
// resources compare equal.
//
// The rule, applied consistently everywhere a URL is compared:
//   - scheme and host are lowercased
//   - the fragment is dropped (#anchor does not change content)
//   - default ports are dropped (:80 for http, :443 for https)
//   - an empty path becomes "/" (http://example.com equals http://example.com/)
//
// Unparseable URLs are returned unchanged; they fail at fetch time instead.
func NormalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}

	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
