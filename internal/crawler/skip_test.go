package crawler

import "testing"

// TestSkipCounter pins down the exact boundary behavior: reaching the limit
// is tolerated, surpassing it aborts.
func TestSkipCounter(t *testing.T) {
	t.Parallel()

	t.Run("limit zero aborts on first skip", func(t *testing.T) {
		t.Parallel()

		s := NewSkipCounter(0)
		if !s.Record() {
			t.Error("first skip with limit 0 should exceed the limit")
		}
		if s.Count() != 1 {
			t.Errorf("expected count 1, got %d", s.Count())
		}
	})

	t.Run("reaching the limit is tolerated", func(t *testing.T) {
		t.Parallel()

		s := NewSkipCounter(1)
		if s.Record() {
			t.Error("skip count 1 with limit 1 should be tolerated")
		}
		if s.Record() != true {
			t.Error("skip count 2 with limit 1 should exceed the limit")
		}
	})

	t.Run("counter is monotonic", func(t *testing.T) {
		t.Parallel()

		s := NewSkipCounter(10)
		for i := 1; i <= 5; i++ {
			s.Record()
			if s.Count() != i {
				t.Fatalf("expected count %d, got %d", i, s.Count())
			}
		}
		if s.Limit() != 10 {
			t.Errorf("expected limit 10, got %d", s.Limit())
		}
	})
}
