package sink

import (
	"context"

	"github.com/harukit/sitegrep/internal/crawler"
	"github.com/harukit/sitegrep/internal/model"
)

// Recorder accumulates results in memory for the final report. It is the
// one sink every run carries; the console and download sinks are optional.
//
// Recorder is not safe for concurrent use: each traversal engine owns its
// own recorder, and the engine delivers results sequentially.
type Recorder struct {
	matches []model.TextMatch
	images  []model.ImageRef
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnMatch records a text match.
func (r *Recorder) OnMatch(_ context.Context, match crawler.Match) error {
	r.matches = append(r.matches, model.TextMatch{
		PageURL: match.PageURL,
		Title:   match.Title,
	})
	return nil
}

// OnImage records an image match.
func (r *Recorder) OnImage(_ context.Context, img model.ImageRef) error {
	r.images = append(r.images, img)
	return nil
}

// Matches returns the recorded text matches in traversal order.
func (r *Recorder) Matches() []model.TextMatch {
	return r.matches
}

// Images returns the recorded image matches in traversal order.
func (r *Recorder) Images() []model.ImageRef {
	return r.images
}
