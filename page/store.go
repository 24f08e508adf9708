package page

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

//go:embed static/default.html
var defaultSource string

// DefaultTemplate returns the parsed embedded template, which contains every slot exactly once.
var DefaultTemplate = sync.OnceValue(func() *Template {
	return ParseTemplate(defaultSource)
})

// Store holds the template that new pages are built from.
// The template can be overridden with a file on disk, which can be reloaded while the application is running.
type Store struct {
	mu       sync.RWMutex
	path     string
	template *Template
	logger   *slog.Logger
}

// NewStore creates a store for the template file at path, or for the embedded default if path is empty.
// If the file cannot be read, the error is logged and the store degrades to an empty template.
func NewStore(path string) *Store {
	s := &Store{path: path, logger: slog.Default()}
	if len(path) == 0 {
		s.template = DefaultTemplate()
		return s
	}
	if err := s.Reload(); err != nil {
		s.logger.Error("Could not load page template, pages will be empty", "path", path, "error", err)
		s.template = ParseTemplate("")
	}
	return s
}

// Template returns the current template.
func (s *Store) Template() *Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// Path returns the path of the template file, this is empty for the embedded default.
func (s *Store) Path() string {
	return s.path
}

// Reload reads the template file again. The current template is kept if this fails.
func (s *Store) Reload() error {
	if len(s.path) == 0 {
		return nil
	}
	source, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("cannot read template %q: %w", s.path, err)
	}
	t := ParseTemplate(string(source))
	for _, slot := range Slots {
		if !t.Has(slot) {
			s.logger.Warn("Template slot is missing or duplicated", "path", s.path, "slot", slot)
		}
	}
	s.mu.Lock()
	s.template = t
	s.mu.Unlock()
	return nil
}

// Watch reloads the template whenever its file changes, until ctx is cancelled.
// Subsequent changes within the debounce delay only trigger a single reload.
// Watching the embedded default template is a no-op that returns immediately.
func (s *Store) Watch(ctx context.Context, delay time.Duration) error {
	if len(s.path) == 0 {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files instead of writing to them, so watch the directory
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("cannot watch template directory: %w", err)
	}

	target := filepath.Clean(s.path)
	debouncer := debounce.New(delay)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target ||
				!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debouncer(func() {
				if err := s.Reload(); err != nil {
					s.logger.Error("Could not reload page template", "error", err)
				} else {
					s.logger.Info("Page template reloaded", "path", s.path)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("Template watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
