package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tartampluch/go-agenda/internal/config"
)

// Watch calls onChange once per burst of filesystem events in the calendar directory,
// until ctx is cancelled. onChange runs on the watcher goroutine.
func (s *FileStore) Watch(ctx context.Context, name string, onChange func()) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrWatch, err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(s.dir(name)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWatch, err)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompWatcher,
		config.LogKeyCalendar, name,
	)
	log.Debug(config.MsgWatchStart, config.LogKeyPath, s.dir(name))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				log.Debug(config.MsgWatchReload, config.LogKeyEvent, ev.String())
				fire = time.After(config.WatchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn(config.ErrWatch, config.LogKeyError, err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}
