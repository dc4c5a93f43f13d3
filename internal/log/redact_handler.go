package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// redactedKeys are attribute keys whose values are always masked.
// The per-site config file carries cookies and auth headers, and the
// fetcher logs request details at debug level, so these attributes can
// show up in ordinary crawl logs.
var redactedKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"token":               true,
	"password":            true,
	"secret":              true,
}

// redactedPatterns match values that are credentials regardless of the
// attribute key they appear under.
var redactedPatterns = []*regexp.Regexp{
	// Bearer and Basic auth header values
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Cookie-shaped session values
	regexp.MustCompile(`(?i)^(session|sid|jsessionid|phpsessid)=`),
}

// MaskValue replaces redacted values in log output.
const MaskValue = "***REDACTED***"

// RedactHandler wraps an slog.Handler and masks credential attributes.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Every component receiving a *slog.Logger is covered automatically
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes added,
// masked first.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr masks a single attribute, recursing into groups.
func (h *RedactHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			masked[i] = h.redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if redactedKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		value := a.Value.String()
		for _, pattern := range redactedPatterns {
			if pattern.MatchString(value) {
				return slog.String(a.Key, MaskValue)
			}
		}
	}

	return a
}

// NewLogger creates sitegrep's standard logger: text output with
// credential redaction. Verbose selects debug level, otherwise warn,
// so normal runs print only the result while -v shows per-page events.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(textHandler))
}
