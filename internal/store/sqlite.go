package store

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/tartampluch/go-agenda/internal/config"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every calendar in a single SQLite database, one row per resource.
type SQLiteStore struct {
	db *sql.DB
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS calendars (
		name       TEXT PRIMARY KEY,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS resources (
		calendar TEXT NOT NULL REFERENCES calendars(name) ON DELETE CASCADE,
		kind     TEXT NOT NULL,
		data     BLOB,
		PRIMARY KEY (calendar, kind)
	)`,
}

// NewSQLiteStore opens (or creates) the database and ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrOpenDB, err)
	}
	// PRAGMAs are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", config.ErrCreateSchema, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Exists(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM calendars WHERE name = ?", name).Scan(&count); err != nil {
		return false, fmt.Errorf("check calendar %s: %w", name, err)
	}
	return count > 0, nil
}

// Create inserts the calendar with an empty task resource.
func (s *SQLiteStore) Create(name string) error {
	exists, err := s.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrCalendarExists, name)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin create %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("INSERT INTO calendars (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("insert calendar %s: %w", name, err)
	}
	if _, err := tx.Exec("INSERT INTO resources (calendar, kind, data) VALUES (?, ?, ?)", name, string(ResourceTasks), []byte{}); err != nil {
		return fmt.Errorf("insert resource %s: %w", name, err)
	}
	return tx.Commit()
}

// Delete removes the calendar and its resources.
func (s *SQLiteStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("DELETE FROM calendars WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete calendar %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete calendar %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrCalendarNotFound, name)
	}
	if _, err := tx.Exec("DELETE FROM resources WHERE calendar = ?", name); err != nil {
		return fmt.Errorf("delete resources %s: %w", name, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM calendars ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("query calendars: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) OpenRead(name string, res Resource) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRow("SELECT data FROM resources WHERE calendar = ? AND kind = ?", name, string(res)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrResourceNotFound, name, res)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", name, res, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// OpenWrite buffers the new content and upserts it when the writer is closed.
func (s *SQLiteStore) OpenWrite(name string, res Resource) (io.WriteCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &blobWriter{store: s, name: name, kind: res}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) put(name string, res Resource, data []byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin write %s/%s: %w", name, res, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("INSERT OR IGNORE INTO calendars (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("ensure calendar %s: %w", name, err)
	}
	_, err = tx.Exec(
		`INSERT INTO resources (calendar, kind, data) VALUES (?, ?, ?)
		 ON CONFLICT(calendar, kind) DO UPDATE SET data = excluded.data`,
		name, string(res), data,
	)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", name, res, err)
	}
	return tx.Commit()
}

type blobWriter struct {
	store  *SQLiteStore
	name   string
	kind   Resource
	buf    bytes.Buffer
	closed bool
}

func (w *blobWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write on closed resource")
	}
	return w.buf.Write(p)
}

func (w *blobWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.store.put(w.name, w.kind, w.buf.Bytes())
}
