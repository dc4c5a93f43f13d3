package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/harukit/sitegrep/internal/crawler"
	"github.com/harukit/sitegrep/internal/model"
)

// DefaultMaxImageSize caps the bytes downloaded per image.
const DefaultMaxImageSize = 20 * 1024 * 1024

// DownloadOptions configures an ImageDownloader.
type DownloadOptions struct {
	// Dir is the directory downloads are written to. Created if missing.
	Dir string

	// Client performs the downloads. Passing the fetcher's client keeps
	// the proxy and timeout settings consistent with the crawl itself.
	// Defaults to http.DefaultClient.
	Client *http.Client

	// MaxBytes caps the bytes read per image. Defaults to DefaultMaxImageSize.
	MaxBytes int64

	// InspectEXIF extracts an EXIF tag summary from each downloaded image.
	InspectEXIF bool

	// Logger receives per-download debug events. Defaults to slog.Default.
	Logger *slog.Logger
}

// ImageDownloader saves matched images to disk. The same image often
// appears on many pages, so downloads are deduplicated by source URL;
// only the first occurrence is fetched and recorded.
//
// Like the other sinks, an ImageDownloader belongs to a single traversal
// engine and is not safe for concurrent use.
type ImageDownloader struct {
	dir         string
	client      *http.Client
	maxBytes    int64
	inspectEXIF bool
	logger      *slog.Logger

	seen    map[string]struct{}
	used    map[string]int
	results []model.ImageResult
}

// NewImageDownloader creates an ImageDownloader, creating the target
// directory if it does not exist.
func NewImageDownloader(opts DownloadOptions) (*ImageDownloader, error) {
	if opts.Dir == "" {
		return nil, errors.New("image download directory must not be empty")
	}
	if err := os.MkdirAll(opts.Dir, 0750); err != nil {
		return nil, fmt.Errorf("create image directory %s: %w", opts.Dir, err)
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ImageDownloader{
		dir:         opts.Dir,
		client:      client,
		maxBytes:    maxBytes,
		inspectEXIF: opts.InspectEXIF,
		logger:      logger,
		seen:        make(map[string]struct{}),
		used:        make(map[string]int),
	}, nil
}

// OnMatch is a no-op; the downloader only handles images.
func (d *ImageDownloader) OnMatch(context.Context, crawler.Match) error {
	return nil
}

// OnImage downloads the image and records the result. Repeated source
// URLs are skipped. A failed download is returned as an error so the
// engine logs it, but it never stops the crawl.
func (d *ImageDownloader) OnImage(ctx context.Context, img model.ImageRef) error {
	if _, ok := d.seen[img.SourceURL]; ok {
		return nil
	}
	d.seen[img.SourceURL] = struct{}{}

	data, err := d.download(ctx, img.SourceURL)
	if err != nil {
		return err
	}

	savedPath := filepath.Join(d.dir, d.uniqueName(img.SourceURL))
	if err := os.WriteFile(savedPath, data, 0644); err != nil {
		return fmt.Errorf("save image %s: %w", img.SourceURL, err)
	}

	result := model.ImageResult{
		PageURL:   img.PageURL,
		SourceURL: img.SourceURL,
		AltText:   img.AltText,
		SavedPath: savedPath,
		ByteSize:  int64(len(data)),
	}
	if d.inspectEXIF {
		result.EXIF = exifSummary(data)
	}
	d.results = append(d.results, result)

	d.logger.Debug("downloaded image",
		"url", img.SourceURL,
		"path", savedPath,
		"bytes", len(data),
	)
	return nil
}

// Results returns the downloaded images in download order.
func (d *ImageDownloader) Results() []model.ImageResult {
	return d.results
}

func (d *ImageDownloader) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for image %s: %w", imageURL, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image %s: %w", imageURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Nothing useful to do with a close error here

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download image %s: status %d", imageURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", imageURL, err)
	}
	return data, nil
}

// uniqueName derives a filesystem-safe, collision-free file name from the
// image URL. Different URLs with the same base name get numeric suffixes.
func (d *ImageDownloader) uniqueName(imageURL string) string {
	name := "image"
	if u, err := url.Parse(imageURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "." && base != "/" {
			name = sanitizeFileName(base)
		}
	}

	d.used[name]++
	if n := d.used[name]; n > 1 {
		ext := path.Ext(name)
		name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
	}
	return name
}

// sanitizeFileName strips characters that are path separators or otherwise
// unsafe in file names.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}

// exifSummary extracts a flat tag-name to value map from image bytes.
// Images without EXIF data return nil; parse errors are swallowed because
// metadata inspection is best effort and must not fail a download.
func exifSummary(data []byte) map[string]string {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return nil
	}

	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil || len(tags) == 0 {
		return nil
	}

	summary := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.TagName == "" || tag.FormattedFirst == "" {
			continue
		}
		summary[tag.TagName] = tag.FormattedFirst
	}
	if len(summary) == 0 {
		return nil
	}
	return summary
}
