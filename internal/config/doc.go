// Package config provides configuration structures and utilities for
// sitegrep: the run configuration built from CLI flags, the optional
// .sitegrep YAML file with per-site overrides, and the XDG directory
// helpers used for the run-history database.
package config
