// Package watch feeds image files from a directory to a handler: the files
// already present first, then new or rewritten ones as they settle.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"imgtext/process/inputs"
)

// Handler processes one image path. Calls never overlap.
type Handler func(ctx context.Context, path string)

// Watcher watches a single directory (not recursively).
type Watcher struct {
	Dir string
	// Settle is how long a file must go without events before it is handed
	// to the handler.
	Settle time.Duration
	// Poll is how often pending files are checked.
	Poll   time.Duration
	Logger *slog.Logger
}

// New returns a Watcher for dir with default timings.
func New(dir string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{Dir: dir, Settle: 300 * time.Millisecond, Poll: 250 * time.Millisecond, Logger: logger}
}

// Existing lists supported image files directly inside dir, sorted by name.
func Existing(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !inputs.IsSupported(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Run handles the existing files, then watches for changes until ctx is
// done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}

	existing, err := Existing(w.Dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	// Events for files created between Add and the listing above are
	// already queued; seen lets the loop drop them if the file is unchanged.
	seen := map[string]stamp{}
	for _, p := range existing {
		if ctx.Err() != nil {
			return nil
		}
		if st, ok := statStamp(p); ok {
			seen[p] = st
		}
		handle(ctx, p)
	}
	w.Logger.Info("watching directory", "dir", w.Dir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(w.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !inputs.IsSupported(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				pending[ev.Name] = time.Now()
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
				delete(seen, ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", "err", err)
		case now := <-ticker.C:
			for _, p := range settled(pending, now, w.Settle) {
				delete(pending, p)
				if unchanged(seen, p) {
					w.Logger.Debug("already handled", "path", p)
					continue
				}
				handle(ctx, p)
			}
		}
	}
}

// stamp identifies a version of a file's contents.
type stamp struct {
	mod  time.Time
	size int64
}

func statStamp(path string) (stamp, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return stamp{}, false
	}
	return stamp{mod: fi.ModTime(), size: fi.Size()}, true
}

// unchanged reports whether path was handled during the initial scan and
// has not been modified since. The entry is consumed either way, so later
// rewrites are always handled.
func unchanged(seen map[string]stamp, path string) bool {
	prev, ok := seen[path]
	if !ok {
		return false
	}
	delete(seen, path)
	cur, ok := statStamp(path)
	return ok && cur.size == prev.size && cur.mod.Equal(prev.mod)
}

// settled returns the pending paths whose last event is older than settle,
// oldest first.
func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for p, t := range pending {
		if now.Sub(t) > settle {
			ready = append(ready, p)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		ti, tj := pending[ready[i]], pending[ready[j]]
		if ti.Equal(tj) {
			return ready[i] < ready[j]
		}
		return ti.Before(tj)
	})
	return ready
}
