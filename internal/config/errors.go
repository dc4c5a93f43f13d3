package config

import "errors"

// Configuration validation errors returned by Config.Validate.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate() so that callers can use
// errors.Is() while still getting human-readable messages.
var (
	// ErrNoTarget is returned when no base URL is given.
	ErrNoTarget = errors.New("no target specified: provide one or more base URLs")

	// ErrNoNeedle is returned in search mode when the search string is empty.
	// (Images mode accepts an empty needle: it means "every image".)
	ErrNoNeedle = errors.New("no search string specified")

	// ErrNegativeSkipLimit is returned when the skip limit is negative.
	// Zero is valid: the first skip aborts the run.
	ErrNegativeSkipLimit = errors.New("invalid skip limit: must be non-negative")

	// ErrInvalidTimeout is returned when the per-request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")
)
