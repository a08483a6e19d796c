// Package watch re-runs document checks when markdown files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harrison/paver/internal/fileutil"
)

// DefaultDebounceDelay is the quiet period that closes a batch of changes.
const DefaultDebounceDelay = 200 * time.Millisecond

// Watcher collects markdown changes under a set of roots and delivers them
// in debounced batches: an editor's burst of writes becomes one batch.
type Watcher struct {
	watcher *fsnotify.Watcher
	batches chan []string
	errors  chan error
	done    chan struct{}
	roots   []string
	exclude []string

	mu            sync.Mutex
	debounceDelay time.Duration
	pending       map[string]bool
	timer         *time.Timer
	closed        bool
}

// New watches every directory under roots. File roots are watched through
// their parent directory. exclude holds doublestar globs relative to each root.
func New(roots []string, exclude []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:       fsw,
		batches:       make(chan []string, 8),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		exclude:       exclude,
		debounceDelay: DefaultDebounceDelay,
		pending:       make(map[string]bool),
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		if !info.IsDir() {
			abs = filepath.Dir(abs)
		}
		w.roots = append(w.roots, abs)
		if err := w.addRecursive(abs); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	go w.processEvents()
	return w, nil
}

// addRecursive adds the directory and all its non-hidden subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return err
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				w.sendError(err)
			}
			return
		}
	}

	if event.Op == fsnotify.Chmod || !w.relevant(path) {
		return
	}
	w.enqueue(path)
}

// relevant reports whether path is a markdown file not excluded under its root.
func (w *Watcher) relevant(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	isMarkdown := false
	for _, e := range fileutil.MarkdownExtensions {
		if ext == e {
			isMarkdown = true
			break
		}
	}
	if !isMarkdown {
		return false
	}
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if fileutil.MatchAny(w.exclude, filepath.ToSlash(rel)) {
			return false
		}
	}
	return true
}

// enqueue adds path to the pending batch and restarts the quiet-period timer.
func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(w.pending))
	for p := range w.pending {
		batch = append(batch, p)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	sort.Strings(batch)
	select {
	case w.batches <- batch:
	case <-w.done:
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
		// Error channel full, drop the error
	}
}

// Batches delivers sorted, deduplicated paths of changed markdown files.
func (w *Watcher) Batches() <-chan []string {
	return w.batches
}

// Errors returns the channel for receiving watcher errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// SetDebounceDelay sets the quiet period. Call it before changes arrive.
func (w *Watcher) SetDebounceDelay(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDelay = delay
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}

// Run calls onChange for every batch until ctx is cancelled. Watcher errors
// go to onError when it is non-nil.
func (w *Watcher) Run(ctx context.Context, onChange func([]string), onError func(error)) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-w.batches:
			onChange(batch)
		case err := <-w.errors:
			if onError != nil {
				onError(err)
			}
		}
	}
}
