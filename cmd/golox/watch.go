package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sambeau/golox/pkg/lox/config"
)

// rerunGate coalesces the burst of events editors emit on save into a
// single rerun.
type rerunGate struct {
	mu       sync.Mutex
	debounce time.Duration
	last     time.Time
}

func (g *rerunGate) allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if now.Sub(g.last) < g.debounce {
		return false
	}
	g.last = now
	return true
}

// isRerunEvent reports whether a filesystem event should trigger a
// rerun of the watched file. Editors that save via rename-and-replace
// produce Create rather than Write.
func isRerunEvent(event fsnotify.Event, filename string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return filepath.Base(event.Name) == filepath.Base(filename)
}

// watchAndRun executes the file, then re-executes it every time it
// changes. The containing directory is watched rather than the file
// itself so editors that replace the file on save don't break the
// watch.
func watchAndRun(filename string, cfg *config.Config, stdout, stderr io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(filename)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	runFileTo(filename, cfg, stdout, stderr)
	fmt.Fprintf(stdout, "[WATCH] watching %s (Ctrl-C to stop)\n", filename)

	gate := &rerunGate{debounce: cfg.Watch.Debounce()}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRerunEvent(event, filename) {
				continue
			}
			if !gate.allow(time.Now()) {
				continue
			}

			fmt.Fprintf(stdout, "\n%s\n[WATCH] re-running %s\n", strings.Repeat("-", 40), filename)
			runFileTo(filename, cfg, stdout, stderr)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(stderr, "[WATCH ERROR] %v\n", err)
		}
	}
}
