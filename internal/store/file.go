package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tartampluch/go-agenda/internal/config"
)

// FileStore keeps one directory per calendar under Root:
//
//	<root>/<name>/calendar.json
//	<root>/<name>/recurrency.json
//
// Writes truncate and rewrite the file in place; there is no atomic rename.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New(config.ErrDataDir)
	}
	if err := os.MkdirAll(root, config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDataDir, err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the storage root directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) dir(name string) string {
	return filepath.Join(s.root, name)
}

func (s *FileStore) path(name string, res Resource) string {
	return filepath.Join(s.dir(name), string(res))
}

func (s *FileStore) Exists(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	info, err := os.Stat(s.dir(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// Create makes the calendar directory with an empty task file.
func (s *FileStore) Create(name string) error {
	exists, err := s.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrCalendarExists, name)
	}
	if err := os.MkdirAll(s.dir(name), config.DirPermUserRWX); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path(name, ResourceTasks), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return err
	}
	slog.Debug(config.MsgCalendarCreated,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCalendar, name,
		config.LogKeyBackend, config.BackendFile,
	)
	return f.Close()
}

func (s *FileStore) Delete(name string) error {
	exists, err := s.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrCalendarNotFound, name)
	}
	if err := os.RemoveAll(s.dir(name)); err != nil {
		return err
	}
	slog.Debug(config.MsgCalendarDeleted,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCalendar, name,
	)
	return nil
}

// List returns calendar names sorted lexicographically. A missing root yields none.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || ValidateName(e.Name()) != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) OpenRead(name string, res Resource) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(name, res))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrResourceNotFound, name, res)
		}
		return nil, err
	}
	return f, nil
}

// OpenWrite truncates the resource, creating the calendar directory when missing.
func (s *FileStore) OpenWrite(name string, res Resource) (io.WriteCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir(name), config.DirPermUserRWX); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(s.path(name, res), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FileStore) Close() error {
	return nil
}
