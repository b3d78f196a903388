// Package services hosts background helpers for the gitdeck UI.
package services

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is the debounce window for watcher-driven refreshes.
const WatchDebounce = 600 * time.Millisecond

// CommonDirResolver resolves the git common directory of the watched
// repository.
type CommonDirResolver interface {
	GitCommonDir(ctx context.Context) (string, error)
}

// RepoWatcher watches the git directory (HEAD, refs, logs) and signals the
// UI to refresh when the repository changes underneath it.
type RepoWatcher struct {
	Started     bool
	Waiting     bool
	CommonDir   string
	Roots       []string
	Events      chan struct{}
	Done        chan struct{}
	Paths       map[string]struct{}
	Mu          sync.Mutex
	Watcher     *fsnotify.Watcher
	LastRefresh time.Time
	git         CommonDirResolver
	logf        func(string, ...any)
}

// NewRepoWatcher creates a RepoWatcher resolving paths through git.
func NewRepoWatcher(git CommonDirResolver, logf func(string, ...any)) *RepoWatcher {
	return &RepoWatcher{
		git:  git,
		logf: logf,
	}
}

// Start initialises the watcher and starts the background goroutine. It
// returns false without error when there is nothing to watch (not a
// repository).
func (w *RepoWatcher) Start(ctx context.Context) (bool, error) {
	if w.Started {
		return false, nil
	}
	commonDir, err := w.git.GitCommonDir(ctx)
	if err != nil || commonDir == "" {
		w.debugf("auto refresh: unable to resolve git common dir: %v", err)
		return false, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, err
	}

	w.Started = true
	w.Watcher = watcher
	w.CommonDir = commonDir
	w.Events = make(chan struct{}, 1)
	w.Done = make(chan struct{})
	w.Paths = make(map[string]struct{})
	w.Roots = []string{
		filepath.Join(commonDir, "refs"),
		filepath.Join(commonDir, "logs"),
	}
	w.addWatchDir(commonDir)
	for _, root := range w.Roots {
		w.addWatchTree(root)
	}

	go w.run()
	return true, nil
}

// Stop stops the watcher and closes channels.
func (w *RepoWatcher) Stop() {
	if !w.Started {
		return
	}
	close(w.Done)
	w.Started = false
	if w.Watcher != nil {
		_ = w.Watcher.Close()
	}
}

// NextEvent returns the event channel if waiting is not already active.
func (w *RepoWatcher) NextEvent() <-chan struct{} {
	if w.Events == nil || w.Waiting {
		return nil
	}
	w.Waiting = true
	return w.Events
}

// ResetWaiting clears the waiting flag after an event is processed.
func (w *RepoWatcher) ResetWaiting() {
	w.Waiting = false
}

// ShouldRefresh checks debounce timing for watcher events.
func (w *RepoWatcher) ShouldRefresh(now time.Time) bool {
	if !w.LastRefresh.IsZero() && now.Sub(w.LastRefresh) < WatchDebounce {
		return false
	}
	w.LastRefresh = now
	return true
}

// Signal notifies listeners of watcher activity.
func (w *RepoWatcher) Signal() {
	select {
	case <-w.Done:
		return
	default:
	}
	select {
	case w.Events <- struct{}{}:
	default:
	}
}

// IsUnderRoot reports whether the path is under any watch root.
func (w *RepoWatcher) IsUnderRoot(path string) bool {
	if path == "" {
		return false
	}
	for _, root := range w.Roots {
		if root == "" {
			continue
		}
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *RepoWatcher) run() {
	for {
		select {
		case <-w.Done:
			return
		case event, ok := <-w.Watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			w.Signal()
		case err, ok := <-w.Watcher.Errors:
			if !ok {
				return
			}
			w.debugf("repo watcher error: %v", err)
		}
	}
}

// maybeWatchNewDir registers newly created directories under watch roots.
func (w *RepoWatcher) maybeWatchNewDir(path string) {
	if !w.IsUnderRoot(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.addWatchDir(path)
}

func (w *RepoWatcher) addWatchDir(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	w.Mu.Lock()
	defer w.Mu.Unlock()

	if _, ok := w.Paths[path]; ok {
		return
	}
	if err := w.Watcher.Add(path); err != nil {
		w.debugf("repo watcher add failed for %s: %v", path, err)
		return
	}
	w.Paths[path] = struct{}{}
}

func (w *RepoWatcher) addWatchTree(root string) {
	if root == "" {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		w.addWatchDir(path)
		return nil
	})
}

func (w *RepoWatcher) debugf(format string, args ...any) {
	if w.logf == nil {
		return
	}
	w.logf(format, args...)
}
