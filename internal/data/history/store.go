// Package history persists run summaries to a local sqlite database so watch
// mode can show how a codebase trends over time.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/slvDev/solwatch/internal/core/app"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// RunRecord is one persisted analysis run.
type RunRecord struct {
	RunID      string
	ProjectKey string
	Timestamp  time.Time
	Version    string

	Files     int
	Contracts int
	Missing   int

	High   int
	Medium int
	Low    int
	Gas    int
	NC     int
	Total  int

	Duration time.Duration
}

// NewRunRecord flattens a report into its persisted summary form.
func NewRunRecord(r *app.Report) RunRecord {
	return RunRecord{
		RunID:     uuid.NewString(),
		Timestamp: r.GeneratedAt,
		Version:   r.Version,
		Files:     r.Files,
		Contracts: r.Contracts,
		Missing:   len(r.MissingContracts),
		High:      r.Summary.High,
		Medium:    r.Summary.Medium,
		Low:       r.Summary.Low,
		Gas:       r.Summary.Gas,
		NC:        r.Summary.NC,
		Total:     r.Summary.Total,
		Duration:  r.Duration,
	}
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun persists one run summary. An empty run id gets a fresh uuid; an
// empty project key maps to "default".
func (s *Store) SaveRun(projectKey string, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		projectKey = "default"
	}
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	query := `
INSERT INTO runs (
  run_id, project_key, ts_utc, version, file_count, contract_count, missing_count,
  high_count, medium_count, low_count, gas_count, nc_count, total_count, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.RunID,
			projectKey,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.Version,
			run.Files,
			run.Contracts,
			run.Missing,
			run.High,
			run.Medium,
			run.Low,
			run.Gas,
			run.NC,
			run.Total,
			run.Duration.Milliseconds(),
		)
		return err
	})
}

// LoadRuns returns the saved runs for a project, oldest first. A zero since
// loads everything.
func (s *Store) LoadRuns(projectKey string, since time.Time) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		projectKey = "default"
	}

	query := `
SELECT
  run_id, project_key, ts_utc, version, file_count, contract_count, missing_count,
  high_count, medium_count, low_count, gas_count, nc_count, total_count, duration_ms
FROM runs
WHERE project_key = ?
`
	args := []any{projectKey}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, run_id ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var (
			tsRaw      string
			durationMs int64
			run        RunRecord
		)
		if err := rows.Scan(
			&run.RunID,
			&run.ProjectKey,
			&tsRaw,
			&run.Version,
			&run.Files,
			&run.Contracts,
			&run.Missing,
			&run.High,
			&run.Medium,
			&run.Low,
			&run.Gas,
			&run.NC,
			&run.Total,
			&durationMs,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		run.Duration = time.Duration(durationMs) * time.Millisecond

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}

// LatestRun returns the most recent run for a project, or nil when the
// history is empty.
func (s *Store) LatestRun(projectKey string) (*RunRecord, error) {
	runs, err := s.LoadRuns(projectKey, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	latest := runs[len(runs)-1]
	return &latest, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
