package sink

import (
	"context"
	"errors"

	"github.com/harukit/sitegrep/internal/crawler"
	"github.com/harukit/sitegrep/internal/model"
)

// Multi fans each result out to several sinks, in order. Every sink sees
// every result even when an earlier sink fails; the errors are joined.
type Multi struct {
	sinks []crawler.Sink
}

// NewMulti creates a Multi over the given sinks. Nil sinks are dropped so
// callers can pass optional sinks unconditionally.
func NewMulti(sinks ...crawler.Sink) *Multi {
	kept := make([]crawler.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Multi{sinks: kept}
}

// OnMatch delivers a text match to every sink.
func (m *Multi) OnMatch(ctx context.Context, match crawler.Match) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.OnMatch(ctx, match); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnImage delivers an image match to every sink.
func (m *Multi) OnImage(ctx context.Context, img model.ImageRef) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.OnImage(ctx, img); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
