// Package watch monitors the invoice inbox directory and feeds new files
// into the processing pipeline.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Writes are debounced so partially copied files settle before processing.
const defaultDebounce = 500 * time.Millisecond

// Handler processes one invoice file. A non-nil error leaves the file in
// the inbox for the next run.
type Handler func(ctx context.Context, path string) error

// Watcher monitors an inbox directory for invoice text files.
type Watcher struct {
	inbox    string
	archive  string
	handler  Handler
	debounce time.Duration

	mu       sync.Mutex
	pending  map[string]*time.Timer
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a Watcher that routes .txt files from inbox through handler
// and moves processed files into archive.
func New(inbox, archive string, handler Handler) *Watcher {
	return &Watcher{
		inbox:    inbox,
		archive:  archive,
		handler:  handler,
		debounce: defaultDebounce,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
}

// Run watches the inbox until ctx is cancelled. Files already present when
// the watcher starts are processed first.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.inbox, 0o750); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}
	if err := os.MkdirAll(w.archive, 0o750); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.inbox); err != nil {
		return fmt.Errorf("failed to watch inbox: %w", err)
	}

	if err := w.drainExisting(ctx); err != nil {
		return err
	}

	slog.Info("Watching inbox", "path", w.inbox)
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				w.scheduleProcess(ctx, event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

// Stop ends the watch loop and cancels pending debounce timers.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		for path, timer := range w.pending {
			timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()
		close(w.done)
	})
}

// drainExisting processes files that were already in the inbox.
func (w *Watcher) drainExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.inbox, entry.Name())
		if !isInvoiceFile(path) {
			continue
		}
		w.process(ctx, path)
	}
	return nil
}

func (w *Watcher) scheduleProcess(ctx context.Context, path string) {
	if !isInvoiceFile(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		default:
		}
		w.process(ctx, path)
	})
}

func (w *Watcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return // removed before the debounce fired
	}

	slog.Info("Processing inbox file", "file", filepath.Base(path))
	if err := w.handler(ctx, path); err != nil {
		slog.Error("Failed to process inbox file", "file", path, "error", err)
		return
	}

	if err := w.archiveFile(path); err != nil {
		slog.Warn("Processed file could not be archived", "file", path, "error", err)
	}
}

// archiveFile moves a processed file into the archive directory with a
// timestamp prefix so repeated filenames never collide.
func (w *Watcher) archiveFile(path string) error {
	name := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405"), filepath.Base(path))
	dest := filepath.Join(w.archive, name)
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to archive %s: %w", path, err)
	}
	slog.Debug("Archived invoice", "from", path, "to", dest)
	return nil
}

func isInvoiceFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt") &&
		!strings.HasPrefix(filepath.Base(path), ".")
}
