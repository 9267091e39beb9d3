package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchTargets holds the callback that fires when a watched path
// changes. Used by `shamash scan --watch` to re-run the pipeline and
// re-export without restarting the process.
type WatchTargets struct {
	// OnChange fires with the changed path whenever a write or create
	// event lands under a watched root, or against the config/baseline
	// files passed to NewWatcher.
	OnChange func(path string)
}

// Watcher monitors a project's bytecode roots (recursively) plus a
// fixed set of extra files (the config document, the baseline file)
// using fsnotify, generalized from internal/config/watcher.go's
// original flat single-directory watch of rules.yaml/killed.yaml.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	extraBase map[string]bool // directories added solely to watch one extra file
	done      chan struct{}
}

// NewWatcher creates a file watcher over every directory transitively
// under roots, plus the containing directory of each path in
// extraFiles. The watcher immediately starts processing events in a
// background goroutine; call Close to stop it.
func NewWatcher(roots []string, extraFiles []string, targets WatchTargets) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{fsWatcher: fw, extraBase: make(map[string]bool), done: make(chan struct{})}

	for _, root := range roots {
		if err := addRecursive(fw, root); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching bytecode root %s: %w", root, err)
		}
	}
	for _, f := range extraFiles {
		if f == "" {
			continue
		}
		dir := filepath.Dir(f)
		if w.extraBase[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		w.extraBase[dir] = true
	}

	go w.processEvents(targets)

	slog.Info("file watcher started", "roots", roots, "extraFiles", extraFiles)
	return w, nil
}

// addRecursive walks root and adds every directory (including root
// itself) to fw, so new subdirectories created before the watch starts
// are covered; directories created after the watch starts are covered
// too, since fsnotify reports their parent's Create event and callers
// re-scan rather than track the tree incrementally.
func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}

// processEvents reads fsnotify events and invokes targets.OnChange for
// every write/create event, ignoring removes and renames (a removed
// file is not a new scan input).
func (w *Watcher) processEvents(targets WatchTargets) {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Info("watched path changed, triggering re-scan", "path", event.Name)
			if targets.OnChange != nil {
				targets.OnChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Close stops the watcher goroutine and releases the underlying
// fsnotify watcher. Safe to call multiple times.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	return w.fsWatcher.Close()
}
