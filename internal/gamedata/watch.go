package gamedata

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Store holds the live registry and swaps it atomically when the
// override file changes. Readers call Current and never block.
type Store struct {
	current      atomic.Pointer[Registry]
	overridePath string
	logger       *slog.Logger
}

// NewStore loads the registry (defaults plus optional overrides).
func NewStore(overridePath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reg, err := Load(overridePath)
	if err != nil {
		return nil, err
	}
	s := &Store{overridePath: overridePath, logger: logger}
	s.current.Store(reg)
	return s, nil
}

// Current returns the live registry snapshot.
func (s *Store) Current() *Registry {
	return s.current.Load()
}

// Reload rebuilds the registry from disk and swaps it in. On failure
// the previous registry stays live.
func (s *Store) Reload() error {
	reg, err := Load(s.overridePath)
	if err != nil {
		return err
	}
	s.current.Store(reg)
	return nil
}

// Watch reloads the registry whenever the override file is written.
// It blocks until ctx is cancelled. With no override path configured
// there is nothing to watch and Watch returns immediately.
func (s *Store) Watch(ctx context.Context) error {
	if s.overridePath == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("gamedata: create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files rather than write in
	// place, which drops the watch on the file itself.
	dir := filepath.Dir(s.overridePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("gamedata: watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.overridePath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Error("gamedata reload failed, keeping previous tables", "path", target, "error", err)
				continue
			}
			s.logger.Info("gamedata tables reloaded", "path", target)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("gamedata watcher error", "error", err)
		}
	}
}
