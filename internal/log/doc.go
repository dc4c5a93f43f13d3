// Package log builds sitegrep's loggers on top of the standard slog
// package. Its one addition is a redacting handler: the config file can
// carry session cookies and auth headers for protected sites, and those
// values must never appear in log output, even at debug level.
package log
