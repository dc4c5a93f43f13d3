package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/harukit/sitegrep/internal/crawler"
	"github.com/harukit/sitegrep/internal/model"
)

// Console prints each result as it is found, so long crawls give feedback
// before the final report. Output goes to one writer (stdout in the CLI);
// color is dropped automatically when the writer is not a terminal.
type Console struct {
	w     io.Writer
	found *color.Color
	dim   *color.Color
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:     w,
		found: color.New(color.FgGreen, color.Bold),
		dim:   color.New(color.Faint),
	}
}

// OnMatch prints a found text match.
func (c *Console) OnMatch(_ context.Context, match crawler.Match) error {
	title := match.Title
	if title == "" {
		title = "(no title)"
	}
	if _, err := c.found.Fprintf(c.w, "match: %s\n", title); err != nil {
		return fmt.Errorf("write match to console: %w", err)
	}
	if _, err := c.dim.Fprintf(c.w, "       %s\n", match.PageURL); err != nil {
		return fmt.Errorf("write match to console: %w", err)
	}
	return nil
}

// OnImage prints a found image.
func (c *Console) OnImage(_ context.Context, img model.ImageRef) error {
	alt := img.AltText
	if alt == "" {
		alt = "(no alt text)"
	}
	if _, err := c.found.Fprintf(c.w, "image: %s\n", alt); err != nil {
		return fmt.Errorf("write image to console: %w", err)
	}
	if _, err := c.dim.Fprintf(c.w, "       %s (on %s)\n", img.SourceURL, img.PageURL); err != nil {
		return fmt.Errorf("write image to console: %w", err)
	}
	return nil
}
