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

	"github.com/pagemine/pagemine/internal/model"
)

// dbFileName is the SQLite file created inside the archive directory.
const dbFileName = "pagemine.db"

// ErrReportNotFound is returned when no archived report has the
// requested ID.
var ErrReportNotFound = errors.New("report not found")

// CrawlDB provides SQLite-based storage for finished crawl reports.
//
// Design decision: We store the full report as a JSON column next to a
// few summary columns rather than normalizing records into rows because:
// 1. Reports are read back whole, never queried field-by-field
// 2. The schema stays stable as the report format evolves
// 3. Summary columns cover the only list queries we need (per-seed history)
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the report archive in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned instead of silently creating an empty history.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the location of the SQLite database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Finished crawl reports, stored whole as JSON with summary columns
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		status TEXT NOT NULL,
		pages_succeeded INTEGER NOT NULL,
		pages_failed INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_seed ON crawl_reports(seed_url);
	CREATE INDEX IF NOT EXISTS idx_reports_started ON crawl_reports(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// ReportSummary is one row of the archive listing, without the full
// report payload.
type ReportSummary struct {
	ID             int64
	SeedURL        string
	Status         model.CrawlStatus
	PagesSucceeded int
	PagesFailed    int
	StartedAt      time.Time
	Elapsed        time.Duration
}

// SaveReport archives a finished report and returns its row ID.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO crawl_reports (seed_url, status, pages_succeeded, pages_failed, started_at, elapsed_ms, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		report.SeedURL,
		string(report.Status),
		report.PagesSucceeded,
		report.PagesFailed,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Elapsed.Milliseconds(),
		string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// History lists archived reports, newest first. A non-empty seedURL
// restricts the listing to that seed; limit <= 0 means no limit.
func (cdb *CrawlDB) History(ctx context.Context, seedURL string, limit int) ([]ReportSummary, error) {
	query := `
	SELECT id, seed_url, status, pages_succeeded, pages_failed, started_at, elapsed_ms
	FROM crawl_reports
	`
	var args []any
	if seedURL != "" {
		query += " WHERE seed_url = ?"
		args = append(args, seedURL)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var summaries []ReportSummary
	for rows.Next() {
		var (
			s         ReportSummary
			status    string
			startedAt string
			elapsedMS int64
		)
		if err := rows.Scan(&s.ID, &s.SeedURL, &status, &s.PagesSucceeded, &s.PagesFailed, &startedAt, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		s.Status = model.CrawlStatus(status)
		s.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if s.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse started_at %q: %w", startedAt, err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ListSeeds returns the distinct seed URLs present in the archive,
// ordered by most recent crawl.
func (cdb *CrawlDB) ListSeeds(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT seed_url
	FROM crawl_reports
	GROUP BY seed_url
	ORDER BY MAX(started_at) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed row: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// Report loads one archived report by ID.
func (cdb *CrawlDB) Report(ctx context.Context, id int64) (*model.CrawlReport, error) {
	var payload string
	err := cdb.db.QueryRowContext(ctx,
		"SELECT report_json FROM crawl_reports WHERE id = ?", id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &report, nil
}
