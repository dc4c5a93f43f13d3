package crawler

// Frontier is the ordered collection of URLs still to visit.
// URLs are appended at the tail and popped from the head, which makes the
// traversal breadth-first relative to discovery order. Duplicates are
// allowed; deduplication happens lazily at pop time via the VisitedSet.
//
// The frontier is owned exclusively by one Engine for the run's lifetime.
type Frontier struct {
	items []string
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{items: make([]string, 0)}
}

// Push appends a URL to the tail of the frontier.
func (f *Frontier) Push(pageURL string) {
	f.items = append(f.items, pageURL)
}

// Pop removes and returns the URL at the head of the frontier.
// It panics if the frontier is empty; callers check Empty first.
func (f *Frontier) Pop() string {
	head := f.items[0]
	f.items = f.items[1:]
	return head
}

// Empty reports whether the frontier has no URLs left.
func (f *Frontier) Empty() bool {
	return len(f.items) == 0
}

// Len returns the number of URLs awaiting a visit.
func (f *Frontier) Len() int {
	return len(f.items)
}
