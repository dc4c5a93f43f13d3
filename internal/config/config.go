package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/harukit/sitegrep/internal/model"
)

// Default configuration values.
const (
	// DefaultSkipLimit is the default number of tolerated skips (duplicate
	// or failing links) before a run aborts. Twenty is generous enough for
	// sites with heavy cross-linking while still terminating quickly on
	// link farms.
	DefaultSkipLimit = 20

	// DefaultTimeout is the per-request timeout. Thirty seconds covers
	// slow origins without letting a single dead host stall a crawl.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of base URLs crawled concurrently
	// when several targets are given. Each crawl is sequential internally;
	// four parallel crawls keep multi-target runs quick without hammering
	// the local network.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies sitegrep in HTTP requests. A descriptive
	// User-Agent lets operators identify crawler traffic in their logs.
	DefaultUserAgent = "sitegrep/1.0 (+https://github.com/harukit/sitegrep)"

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB is ample for HTML while preventing memory exhaustion.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultImageDir is where the images task saves downloads when no
	// --dir flag is given.
	DefaultImageDir = "sitegrep-images"

	// AppName is the application name used for XDG directory paths.
	AppName = "sitegrep"
)

// Config holds all options for a sitegrep invocation. It is populated from
// CLI flags, validated once before any crawl begins, and passed through the
// application by dependency injection rather than global state.
type Config struct {
	// Mode selects the task: text search or image collection.
	Mode model.Mode

	// Targets are the base URLs to crawl. Each target gets its own
	// traversal engine with independent visited/frontier/skip state.
	Targets []string

	// Needle is the literal string to search for. In search mode it is
	// required; in images mode an empty needle matches every image.
	Needle string

	// CaseInsensitive enables case-folded matching.
	CaseInsensitive bool

	// SinglePage restricts each run to its base URL, suppressing all
	// recursion.
	SinglePage bool

	// SkipLimit is the shared ceiling of tolerated skips per run.
	SkipLimit int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// BatchSize is the number of targets crawled concurrently.
	BatchSize int

	// ProxyAddress, when set, routes all requests through a SOCKS5 proxy.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// MaxBodySize caps the response body bytes read per page.
	MaxBodySize int64

	// ImageDir is the directory image downloads are written to.
	ImageDir string

	// InspectEXIF enables EXIF metadata inspection of downloaded images.
	InspectEXIF bool

	// JSONReport and MarkdownReport select the report format. Both false
	// means the plain text report. Mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile, when set, writes the report to this path instead of stdout.
	ReportFile string

	// SaveHistory controls whether finished runs are recorded in the
	// run-history database. Only final results are saved; traversal state
	// (visited set, frontier) is never persisted.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string

	// ConfigFilePath is an explicit path to the .sitegrep config file.
	// Empty means search the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds per-host overrides loaded from the config file.
	SiteConfigs *File

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would be error-prone; this
// constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		SkipLimit:   DefaultSkipLimit,
		Timeout:     DefaultTimeout,
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		ImageDir:    DefaultImageDir,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
		SiteConfigs: &File{Sites: make(map[string]SiteConfig)},
	}
}

// XDGDataDir returns the XDG data directory for sitegrep, following the
// XDG Base Directory Specification (~/.local/share/sitegrep on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any traversal begins, so
// the engine is never initialized with invalid config.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Mode == model.ModeSearch && c.Needle == "" {
		return ErrNoNeedle
	}
	if c.SkipLimit < 0 {
		return ErrNegativeSkipLimit
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
