package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/harukit/sitegrep/internal/model"
)

// HistoryDB stores finished crawl runs in SQLite.
//
// Design decision: We use a single database file for all runs rather
// than one file per target. This keeps the history command a single
// query and simplifies backup.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the given directory.
// When CreateIfNotExists is false and no database exists, an error is
// returned instead of silently creating an empty history.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "sitegrep.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per finished crawl run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		mode TEXT NOT NULL,
		needle TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages_visited INTEGER NOT NULL,
		skip_count INTEGER NOT NULL,
		match_count INTEGER NOT NULL,
		aborted INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_base_url ON runs(base_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Text matches found during a run
	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		page_url TEXT NOT NULL,
		title TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id);

	-- Images collected during a run
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		page_url TEXT NOT NULL,
		source_url TEXT NOT NULL,
		alt_text TEXT,
		saved_path TEXT,
		byte_size INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_images_run ON images(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a finished run. The run row and its matches are
// written in one transaction so a crash never leaves a half-saved run.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("serialize report: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (base_url, mode, needle, started_at, finished_at,
		pages_visited, skip_count, match_count, aborted, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.BaseURL,
		string(report.Mode),
		report.Needle,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
		report.PagesVisited,
		report.SkipCount,
		report.MatchCount(),
		boolToInt(report.Aborted),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read run id: %w", err)
	}

	for _, m := range report.Matches {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO matches (run_id, page_url, title) VALUES (?, ?, ?)`,
			runID, m.PageURL, m.Title,
		); err != nil {
			return 0, fmt.Errorf("insert match: %w", err)
		}
	}

	for _, img := range report.Images {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO images (run_id, page_url, source_url, alt_text, saved_path, byte_size)
		VALUES (?, ?, ?, ?, ?, ?)
		`,
			runID, img.PageURL, img.SourceURL, img.AltText, img.SavedPath, img.ByteSize,
		); err != nil {
			return 0, fmt.Errorf("insert image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// RunRecord is the summary of a stored run, used by the history listing
// without loading full reports.
type RunRecord struct {
	// ID is the run's database identifier.
	ID int64

	// BaseURL is the traversal starting point.
	BaseURL string

	// Mode is the task that was run.
	Mode string

	// Needle is the search string.
	Needle string

	// StartedAt is when the run began.
	StartedAt time.Time

	// PagesVisited is the number of successfully processed pages.
	PagesVisited int

	// MatchCount is the number of results found.
	MatchCount int

	// Aborted reports whether the run hit its skip limit.
	Aborted bool
}

// ListRuns returns the most recent runs, newest first. A non-positive
// limit returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, base_url, mode, needle, started_at, pages_visited, match_count, aborted
	FROM runs
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedAt string
		var aborted int

		if err := rows.Scan(
			&rec.ID,
			&rec.BaseURL,
			&rec.Mode,
			&rec.Needle,
			&startedAt,
			&rec.PagesVisited,
			&rec.MatchCount,
			&aborted,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		rec.StartedAt = parseTimestamp(startedAt)
		rec.Aborted = aborted != 0
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetReport retrieves a full stored report by run ID. Returns nil when
// no run with that ID exists.
func (hdb *HistoryDB) GetReport(ctx context.Context, id int64) (*model.CrawlReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM runs WHERE id = ?`, id,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("parse stored report: %w", err)
	}
	return &report, nil
}

// LatestReport retrieves the most recent stored report for a base URL.
// Returns nil when the URL has never been crawled.
func (hdb *HistoryDB) LatestReport(ctx context.Context, baseURL string) (*model.CrawlReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, `
	SELECT report_json FROM runs
	WHERE base_url = ?
	ORDER BY id DESC
	LIMIT 1
	`, baseURL).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("parse stored report: %w", err)
	}
	return &report, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that may appear in the
// database. We write RFC3339, but SQLite defaults come first for rows
// written by other tools.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp, returning zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
