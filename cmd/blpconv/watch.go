package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debouncer coalesces rapid event bursts into a single callback per file
type debouncer struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	// firing is read-held while a callback runs so stop can wait for it
	firing sync.RWMutex
	delay  time.Duration
	onFire func(path string)
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.firing.RLock()
		defer d.firing.RUnlock()

		d.mu.Lock()
		delete(d.timers, path)
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.onFire(path)
		}
	})
}

// stop cancels pending timers and waits for running callbacks. After it
// returns onFire is never called again.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
	d.mu.Unlock()

	d.firing.Lock()
	d.firing.Unlock()
}

func runWatchMode(cfg *Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range cfg.Watch.Dirs {
		if err := watchRecursive(w, dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		log.Printf("watching %s", dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	db := newDebouncer(cfg.Watch.Debounce(), func(path string) {
		j, ok := jobFor(path, cfg)
		if !ok {
			return
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			if written, err := convertFile(j.input, j.outDir, cfg); err != nil {
				log.Printf("error: %v", err)
			} else {
				log.Printf("converted %s: %d level(s)", j.input, len(written))
			}
		}()
	})
	defer db.stop()

	for _, dir := range cfg.Watch.Dirs {
		jobs, err := collectJobs(dir, cfg.Output.Dir)
		if err != nil {
			return err
		}
		if failed := runJobs(jobs, cfg); failed > 0 {
			log.Printf("initial scan of %s: %d texture(s) failed", dir, failed)
		}
	}

	if interval := cfg.Watch.PollDuration(); interval > 0 {
		go pollLoop(ctx, cfg.Watch.Dirs, interval, db.trigger)
	}

	log.Print("ready, waiting for changes")
	eventLoop(ctx, w, db)

	// No new jobs may be added once wg.Wait starts
	db.stop()
	log.Print("waiting for in-flight conversions")
	wg.Wait()
	return nil
}

func watchRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// jobFor maps a changed path under one of the watched dirs to its job
func jobFor(path string, cfg *Config) (convJob, bool) {
	if !isTexture(path) {
		return convJob{}, false
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return convJob{}, false
	}
	for _, dir := range cfg.Watch.Dirs {
		rel, err := filepath.Rel(dir, filepath.Dir(path))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return convJob{input: path, outDir: filepath.Join(cfg.Output.Dir, rel)}, true
	}
	return convJob{}, false
}

func eventLoop(ctx context.Context, w *fsnotify.Watcher, db *debouncer) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			handleEvent(w, ev, db.trigger)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// handleEvent extends the watch to new directories and reports changed
// files to onChanged.
func handleEvent(w *fsnotify.Watcher, ev fsnotify.Event, onChanged func(path string)) {
	if ev.Has(fsnotify.Remove) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := watchRecursive(w, ev.Name); err != nil {
				log.Printf("watching %s: %v", ev.Name, err)
			}
			return
		}
	}
	if ev.Has(fsnotify.Rename) {
		if _, err := os.Stat(ev.Name); err != nil {
			return
		}
		dir := filepath.Dir(ev.Name)
		if err := w.Add(dir); err != nil {
			log.Printf("watching %s: %v", dir, err)
		}
	}
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) {
		onChanged(ev.Name)
	}
}

// pollLoop walks dirs at a fixed interval and reports textures whose
// modification time changed, for file systems that deliver no events.
func pollLoop(ctx context.Context, dirs []string, interval time.Duration, onChanged func(path string)) {
	mtimes := make(map[string]time.Time)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		seen := make(map[string]bool)
		for _, dir := range dirs {
			filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() || !isTexture(path) {
					return nil
				}
				seen[path] = true
				info, err := d.Info()
				if err != nil {
					return nil
				}
				mt := info.ModTime()
				if prev, ok := mtimes[path]; ok && !mt.Equal(prev) {
					onChanged(path)
				}
				mtimes[path] = mt
				return nil
			})
		}
		for path := range mtimes {
			if !seen[path] {
				delete(mtimes, path)
			}
		}
	}
}
