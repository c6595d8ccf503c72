package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/wricardo/warpgame/game/engine"
)

// Extension marks ability scripts.
const Extension = ".tengo"

// Loader keeps an ability registry in sync with a directory of scripts. Each
// file registers an ability named after the file without its extension.
type Loader struct {
	fs       afero.Fs
	dir      string
	registry *engine.AbilityRegistry
	limits   Limits
	logger   *slog.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithLimits overrides DefaultLimits.
func WithLimits(limits Limits) LoaderOption {
	return func(l *Loader) { l.limits = limits }
}

// WithLogger sets the logger used for reload messages.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader for dir on fsys that registers into registry.
func NewLoader(fsys afero.Fs, dir string, registry *engine.AbilityRegistry, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:       fsys,
		dir:      dir,
		registry: registry,
		limits:   DefaultLimits,
		logger:   slog.Default(),
		loaded:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AbilityName returns the ability name for a script path.
func AbilityName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Extension)
}

// LoadAll registers every script in the directory and returns how many were
// loaded. A missing directory loads nothing. Broken scripts are skipped and
// reported together in the returned error.
func (l *Loader) LoadAll() (int, error) {
	entries, err := afero.ReadDir(l.fs, l.dir)
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Debug("abilities directory missing", "dir", l.dir)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read abilities dir: %w", err)
	}

	var errs []error
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		if err := l.Load(filepath.Join(l.dir, entry.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		count++
	}
	return count, errors.Join(errs...)
}

// Load compiles one script and registers it, replacing any earlier version.
func (l *Loader) Load(path string) error {
	src, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	name := AbilityName(path)
	ability, err := NewAbility(name, src, l.limits)
	if err != nil {
		return err
	}

	l.registry.Replace(name, ability)
	l.mu.Lock()
	l.loaded[name] = true
	l.mu.Unlock()

	l.logger.Info("ability loaded", "name", name, "path", path)
	return nil
}

// Unload removes an ability this loader registered. Abilities registered by
// anyone else are left alone.
func (l *Loader) Unload(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded[name] {
		return false
	}
	delete(l.loaded, name)
	l.registry.Unregister(name)
	l.logger.Info("ability unloaded", "name", name)
	return true
}

// Loaded returns the names this loader currently has registered.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.loaded))
	for name := range l.loaded {
		names = append(names, name)
	}
	return names
}

// Watch reloads scripts as they change on disk until ctx is cancelled. The
// directory must exist on the operating system's filesystem.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				l.logger.Debug("ability watcher stopped", "dir", l.dir)
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				l.handleEvent(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Error("ability watcher error", "error", err)
			}
		}
	}()

	l.logger.Info("watching abilities", "dir", l.dir)
	return nil
}

func (l *Loader) handleEvent(event fsnotify.Event) {
	if filepath.Ext(event.Name) != Extension {
		return
	}
	name := AbilityName(event.Name)

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		l.Unload(name)
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		if err := l.Load(event.Name); err != nil {
			// keep the last good version registered
			l.logger.Warn("ability reload failed", "name", name, "error", err)
		}
	}
}
