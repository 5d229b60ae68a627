package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS batch_apps (
	batch_id  TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	app       TEXT NOT NULL,
	outcome   TEXT NOT NULL,
	attempts  INTEGER NOT NULL,
	exit_code INTEGER NOT NULL,
	error     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (batch_id, position)
);`

// SQLiteStore persists finished batches in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// one writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return err
	}
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a batch and its per-app rows in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, rec domain.BatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, started_at, finished_at) VALUES (?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.FinishedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	for _, app := range rec.Apps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO batch_apps (batch_id, position, app, outcome, attempts, exit_code, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, app.Position, string(app.App), string(app.Outcome), app.Attempts, app.ExitCode, app.Error,
		); err != nil {
			return fmt.Errorf("insert batch app: %w", err)
		}
	}
	return tx.Commit()
}

// Batches returns the most recent batches first. A non-positive limit returns all.
func (s *SQLiteStore) Batches(ctx context.Context, limit int) ([]domain.BatchRecord, error) {
	query := `SELECT id, started_at, finished_at FROM batches ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var records []domain.BatchRecord
	for rows.Next() {
		var rec domain.BatchRecord
		var started, finished string
		if err := rows.Scan(&rec.ID, &started, &finished); err != nil {
			rows.Close()
			return nil, err
		}
		rec.StartedAt = parseTime(started)
		rec.FinishedAt = parseTime(finished)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range records {
		apps, err := s.apps(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Apps = apps
	}
	return records, nil
}

func (s *SQLiteStore) apps(ctx context.Context, batchID string) ([]domain.AppRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, app, outcome, attempts, exit_code, error
		FROM batch_apps WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.AppRecord
	for rows.Next() {
		var app domain.AppRecord
		var id, outcome string
		if err := rows.Scan(&app.Position, &id, &outcome, &app.Attempts, &app.ExitCode, &app.Error); err != nil {
			return nil, err
		}
		app.App = domain.AppID(id)
		app.Outcome = domain.Outcome(outcome)
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Clear deletes all batches.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM batches`)
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
