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

	"github.com/nao1215/urltally/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "urltally.db"

// timestampLayout is how run timestamps are stored, in UTC.
const timestampLayout = "2006-01-02 15:04:05"

// HistoryDB provides SQLite-based storage for scan reports.
type HistoryDB struct {
	db *sql.DB

	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		sources TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		total INTEGER NOT NULL,
		distinct_domains INTEGER NOT NULL,
		distinct_paths INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores report and returns its database row ID.
// Saving the same run ID twice fails.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.ScanReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	sourcesJSON, err := json.Marshal(report.Sources)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize sources: %w", err)
	}

	tally := report.Tally
	if tally == nil {
		tally = model.NewTally()
	}

	query := `
	INSERT INTO runs (run_id, sources, timestamp, total, distinct_domains, distinct_paths, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.ID,
		string(sourcesJSON),
		report.DateScanned.UTC().Format(timestampLayout),
		int64(tally.Total), //nolint:gosec // counts never approach 2^63
		tally.DistinctDomains(),
		tally.DistinctPaths(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return result.LastInsertId()
}

// GetRunByID retrieves a run by its run ID.
// It returns nil without error when no such run exists.
func (hdb *HistoryDB) GetRunByID(ctx context.Context, runID string) (*model.ScanReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE run_id = ?`, runID).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return decodeReport(reportJSON)
}

// GetLatestRuns returns up to n runs, newest first.
func (hdb *HistoryDB) GetLatestRuns(ctx context.Context, n int) ([]*model.ScanReport, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT report_json FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		report, err := decodeReport(reportJSON)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// RunMetadata is the summary of a stored run, without its counters.
type RunMetadata struct {
	// ID is the database row ID.
	ID int64

	// RunID is the report's run identifier.
	RunID string

	// Sources lists the scanned inputs.
	Sources []string

	// Timestamp is when the scan started, in UTC.
	Timestamp time.Time

	// Total is the number of URL occurrences.
	Total uint64

	// DistinctDomains is the number of different domains.
	DistinctDomains int

	// DistinctPaths is the number of different paths.
	DistinctPaths int
}

// ListRuns returns metadata of up to limit runs, newest first.
// A non-positive limit lists every run.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, run_id, sources, timestamp, total, distinct_domains, distinct_paths
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
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta        RunMetadata
			sourcesJSON string
			timestamp   string
			total       int64
		)

		if err := rows.Scan(&meta.ID, &meta.RunID, &sourcesJSON, &timestamp, &total,
			&meta.DistinctDomains, &meta.DistinctPaths); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		if err := json.Unmarshal([]byte(sourcesJSON), &meta.Sources); err != nil {
			meta.Sources = nil
		}
		meta.Timestamp = parseTimestamp(timestamp)
		meta.Total = uint64(total) //nolint:gosec // stored from a uint64

		results = append(results, meta)
	}

	return results, rows.Err()
}

// CountRuns returns the number of stored runs.
func (hdb *HistoryDB) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := hdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

func decodeReport(reportJSON string) (*model.ScanReport, error) {
	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if report.Tally == nil {
		report.Tally = model.NewTally()
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses s with each of timestampFormats in turn and
// returns the zero time if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
