// Package model defines the data structures shared across sitegrep subsystems:
// fetched pages, extracted documents, and the crawl report produced by a run.
package model
