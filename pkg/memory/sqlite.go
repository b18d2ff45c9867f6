package memory

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aletheia-ai/retrace/pkg/errors"
	"github.com/aletheia-ai/retrace/pkg/trace"
)

// SQLiteStore persists the snapshot in a SQLite database. Each save replaces
// the previous snapshot in a single transaction, so a concurrent load sees
// either the old state or the new one, never a mix.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.Mutex
	path string

	initialized sync.Once
}

// NewSQLiteStore creates a SQLite-backed store. If path is ":memory:", the
// database lives in-process only.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to open SQLite database"),
			errors.Fields{"path": path})
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.ensureInitialized(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// WAL mode so a reader never blocks the writer
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.PersistenceFailed, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS meta (
            id          INTEGER PRIMARY KEY CHECK (id = 1),
            version     INTEGER NOT NULL,
            run_counter INTEGER NOT NULL
        );

        CREATE TABLE IF NOT EXISTS learned_constraints (
            position    INTEGER PRIMARY KEY,
            pattern_key TEXT NOT NULL UNIQUE,
            constraint_text TEXT NOT NULL,
            occurrences INTEGER NOT NULL,
            created_at  TEXT NOT NULL
        );

        CREATE TABLE IF NOT EXISTS mistake_patterns (
            pattern_key TEXT PRIMARY KEY,
            count       INTEGER NOT NULL
        );

        CREATE TABLE IF NOT EXISTS runs (
            run_id INTEGER PRIMARY KEY,
            record TEXT NOT NULL
        );
        `

		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.PersistenceFailed, "failed to initialize database")
			return
		}
	})
	return initErr
}

// Load reads the current snapshot. An empty database yields an empty
// snapshot.
func (s *SQLiteStore) Load() (*Snapshot, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := NewSnapshot()

	var version int
	err := s.db.QueryRow("SELECT version, run_counter FROM meta WHERE id = 1").
		Scan(&version, &snapshot.RunCounter)
	if err == sql.ErrNoRows {
		return snapshot, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to read meta row")
	}
	if version > snapshotVersion {
		return nil, errors.WithFields(
			errors.New(errors.SchemaIncompatible, "database was written by a newer version"),
			errors.Fields{"path": s.path, "version": version})
	}

	rows, err := s.db.Query(`SELECT pattern_key, constraint_text, occurrences, created_at
        FROM learned_constraints ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to read constraints")
	}
	defer rows.Close()

	for rows.Next() {
		var c Constraint
		var createdAt string
		if err := rows.Scan(&c.PatternKey, &c.Text, &c.Occurrences, &createdAt); err != nil {
			return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to scan constraint")
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			c.CreatedAt = t
		}
		snapshot.Constraints = append(snapshot.Constraints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "error iterating constraints")
	}

	patternRows, err := s.db.Query("SELECT pattern_key, count FROM mistake_patterns")
	if err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to read patterns")
	}
	defer patternRows.Close()

	for patternRows.Next() {
		var key string
		var count int
		if err := patternRows.Scan(&key, &count); err != nil {
			return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to scan pattern")
		}
		snapshot.Patterns[key] = count
	}
	if err := patternRows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "error iterating patterns")
	}

	runRows, err := s.db.Query("SELECT record FROM runs ORDER BY run_id")
	if err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to read runs")
	}
	defer runRows.Close()

	for runRows.Next() {
		var record string
		if err := runRows.Scan(&record); err != nil {
			return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to scan run")
		}
		var t trace.ExecutionTrace
		if err := json.Unmarshal([]byte(record), &t); err != nil {
			return nil, errors.Wrap(err, errors.SchemaIncompatible, "stored run record is not a valid trace")
		}
		snapshot.History = append(snapshot.History, &t)
	}
	if err := runRows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "error iterating runs")
	}

	return snapshot, nil
}

// Save replaces the stored snapshot in one transaction.
func (s *SQLiteStore) Save(snapshot *Snapshot) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range []string{
		"DELETE FROM meta",
		"DELETE FROM learned_constraints",
		"DELETE FROM mistake_patterns",
		"DELETE FROM runs",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return errors.Wrap(err, errors.PersistenceFailed, "failed to clear previous snapshot")
		}
	}

	if _, err := tx.Exec("INSERT INTO meta (id, version, run_counter) VALUES (1, ?, ?)",
		snapshotVersion, snapshot.RunCounter); err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to write meta row")
	}

	for i, c := range snapshot.Constraints {
		if _, err := tx.Exec(`INSERT INTO learned_constraints
            (position, pattern_key, constraint_text, occurrences, created_at)
            VALUES (?, ?, ?, ?, ?)`,
			i, c.PatternKey, c.Text, c.Occurrences, c.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			return errors.Wrap(err, errors.PersistenceFailed, "failed to write constraint")
		}
	}

	for key, count := range snapshot.Patterns {
		if _, err := tx.Exec("INSERT INTO mistake_patterns (pattern_key, count) VALUES (?, ?)",
			key, count); err != nil {
			return errors.Wrap(err, errors.PersistenceFailed, "failed to write pattern")
		}
	}

	for _, t := range snapshot.History {
		record, err := json.Marshal(t)
		if err != nil {
			return errors.Wrap(err, errors.PersistenceFailed, "failed to encode trace")
		}
		if _, err := tx.Exec("INSERT INTO runs (run_id, record) VALUES (?, ?)",
			t.RunID, string(record)); err != nil {
			return errors.Wrap(err, errors.PersistenceFailed, "failed to write run")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to commit snapshot")
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to close database connection")
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
