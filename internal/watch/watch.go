// Package watch notifies callers when the record directory changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups bursts of events (such as the temp file and
// rename of an update) into one notification.
const DefaultDebounce = 150 * time.Millisecond

// Watcher calls a handler whenever record files under Root are created,
// rewritten, removed or renamed.
type Watcher struct {
	Root     string
	Ext      string
	Debounce time.Duration
	Logger   *zap.Logger
}

// New creates a Watcher for .json files under root.
func New(root string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{Root: root, Ext: ".json", Debounce: DefaultDebounce, Logger: logger}
}

// Run calls onChange once immediately and again after every settled burst
// of relevant events. It blocks until ctx is cancelled or onChange fails.
// The root directory is created if missing.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", w.Root, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.Root); err != nil {
		return fmt.Errorf("watching %s: %w", w.Root, err)
	}

	if err := onChange(); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.Logger.Debug("record change", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(debounce)
		case <-timer.C:
			if err := onChange(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// relevant reports whether an event touches a record file. Hidden files
// are temp files from in-place updates; only their rename matters, and
// that shows up as a write to the record itself.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if w.Ext != "" && filepath.Ext(name) != w.Ext {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
