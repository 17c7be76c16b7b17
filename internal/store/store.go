// Package store persists calendar resources. A calendar is a named container of two
// resources (the task data and the recurrence registry); the calendar package only
// talks to the Store interface and never sees paths or tables.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tartampluch/go-agenda/internal/config"
)

// Resource names one of the documents stored for a calendar.
type Resource string

const (
	ResourceTasks      Resource = config.TasksFileName
	ResourceRecurrence Resource = config.RecurrenceFileName
)

var (
	ErrCalendarExists   = errors.New(config.ErrCalendarExists)
	ErrCalendarNotFound = errors.New(config.ErrCalendarNotFound)
	ErrResourceNotFound = errors.New(config.ErrResourceNotFound)
	ErrInvalidName      = errors.New(config.ErrInvalidName)
)

// Store enumerates, creates, deletes and opens calendar resources.
// OpenWrite replaces the whole resource; the new content is visible after Close.
type Store interface {
	Exists(name string) (bool, error)
	Create(name string) error
	Delete(name string) error
	List() ([]string, error)
	OpenRead(name string, res Resource) (io.ReadCloser, error)
	OpenWrite(name string, res Resource) (io.WriteCloser, error)
	io.Closer
}

// Watcher is implemented by stores that can report external changes to a calendar.
type Watcher interface {
	Watch(ctx context.Context, name string, onChange func()) error
}

// Open returns the Store for the configured backend rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case config.BackendFile:
		fs, err := NewFileStore(dataDir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(dataDir, config.DirPermUserRWX); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrDataDir, err)
		}
		db, err := NewSQLiteStore(filepath.Join(dataDir, config.SQLiteFileName))
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrBackendUnsupported, backend)
	}
}

// ValidateName rejects names that are empty or could escape the storage root.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
