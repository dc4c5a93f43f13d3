// Package database provides SQLite-based storage for sitegrep's run
// history. Only finished results are persisted: the run summary and its
// matches. Traversal state (visited set, frontier, skip counter) lives
// for a single run and is never written to the database.
package database
