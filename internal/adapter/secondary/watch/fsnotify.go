package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"admute/internal/logging"
)

// FileWatcher calls onChange whenever one of the watched pattern files is
// written, created, renamed or removed. Parent directories are watched so
// atomic saves and files that do not exist yet are still noticed.
type FileWatcher struct {
	files    map[string]bool
	dirs     []string
	onChange func(path string)
}

// NewFileWatcher prepares a watcher for paths.
func NewFileWatcher(paths []string, onChange func(path string)) (*FileWatcher, error) {
	w := &FileWatcher{files: make(map[string]bool), onChange: onChange}
	seenDir := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seenDir[dir] {
			seenDir[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Start registers the watches and processes events in the background until
// ctx is cancelled. It fails only if no directory could be watched.
func (w *FileWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	added := 0
	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			logging.Warnf("watch %s: %v", dir, err)
			continue
		}
		added++
	}
	if added == 0 {
		watcher.Close()
		return errors.New("no pattern file directory could be watched")
	}
	logging.Infof("watching %d pattern file(s) for changes", len(w.files))

	go w.loop(ctx, watcher)
	return nil
}

func (w *FileWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			logging.Debugf("pattern file changed: %s (%s)", event.Name, event.Op)
			w.onChange(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Errorf("pattern watcher error: %v", err)
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
