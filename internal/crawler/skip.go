package crawler

// SkipCounter counts tolerated anomalies against a shared ceiling.
// Duplicate URLs and fetch/parse failures are accounted identically;
// there is one budget for both reasons, not two.
//
// The counter is monotonic for the run: there is no reset.
type SkipCounter struct {
	count int
	limit int
}

// NewSkipCounter creates a SkipCounter with the given ceiling.
// The limit must be non-negative; Engine configuration validates this
// before a counter is ever created.
func NewSkipCounter(limit int) *SkipCounter {
	return &SkipCounter{limit: limit}
}

// Record increments the counter and reports whether the count now exceeds
// the limit, meaning the traversal must stop.
//
// Boundary: reaching the limit is tolerated; only surpassing it aborts.
// With limit 1, the first skip returns false (1 > 1 is false) and the
// second returns true. With limit 0, the first skip aborts.
func (s *SkipCounter) Record() bool {
	s.count++
	return s.count > s.limit
}

// Count returns the number of skips recorded so far.
func (s *SkipCounter) Count() int {
	return s.count
}

// Limit returns the configured ceiling.
func (s *SkipCounter) Limit() int {
	return s.limit
}
