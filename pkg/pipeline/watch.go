/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: watch.go
Description: Watch mode. Re-runs the pipeline whenever one of the watched input files is
written or recreated. Parent directories are watched so editors that replace files on save
are still seen, and bursts of events are debounced into a single run.
*/

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change triggers a run
const DefaultDebounce = 500 * time.Millisecond

// RunHandler receives the outcome of every triggered run
type RunHandler func(result *Result, err error)

// Watch blocks until ctx is done, re-running the pipeline after changes to paths.
// An initial run happens before watching starts.
func (p *Pipeline) Watch(ctx context.Context, paths []string, debounce time.Duration, handle RunHandler) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("bad path %q: %w", path, err)
		}
		watched[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	var mu sync.Mutex
	run := func() {
		// one run at a time; a change during a run schedules the next one
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		handle(p.Run(ctx))
	}

	p.logger.Info("Watching source files", map[string]interface{}{"files": len(watched), "debounce": debounce})
	run()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			if !watched[abs] {
				continue
			}
			p.logger.Debug("Source file changed", map[string]interface{}{"path": abs, "op": event.Op.String()})
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, run)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warning("Watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// WatchPaths returns the local files behind the file sources of a pipeline
func (p *Pipeline) WatchPaths() []string {
	var paths []string
	for _, src := range p.sources {
		if fs, ok := src.(interface{ LocalPath() string }); ok && fs.LocalPath() != "" {
			paths = append(paths, fs.LocalPath())
		}
	}
	return paths
}
