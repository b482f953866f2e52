// Package hints loads a directory of static JSON hint files into
// read-only lookup tables keyed by DocType name and by workflow name.
package hints

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

// Hint is one usage hint record.
type Hint struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// hintFile is the on-disk shape. A file targets either a DocType or a
// workflow; files targeting neither are skipped.
type hintFile struct {
	DocType  string `json:"doctype,omitempty"`
	Workflow string `json:"workflow,omitempty"`
	Hints    []Hint `json:"hints"`
}

type hintSet struct {
	byDocType  map[string][]Hint
	byWorkflow map[string][]Hint
}

// Loader serves hint lookups from an atomically swapped snapshot, so
// concurrent readers never observe a partially populated table.
type Loader struct {
	dir string
	log *slog.Logger
	set atomic.Pointer[hintSet]
}

// NewLoader returns a Loader for the given directory. An empty dir
// yields a loader that always answers with no hints.
func NewLoader(dir string, log *slog.Logger) *Loader {
	l := &Loader{dir: dir, log: log}
	l.set.Store(&hintSet{byDocType: map[string][]Hint{}, byWorkflow: map[string][]Hint{}})
	return l
}

// Load reads every *.json file in the directory and swaps in a freshly
// built snapshot. Malformed files are skipped with a warning rather
// than failing the load.
func (l *Loader) Load() error {
	if l.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return err
	}

	next := &hintSet{byDocType: map[string][]Hint{}, byWorkflow: map[string][]Hint{}}
	// Deterministic hint order regardless of directory iteration order.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if match, _ := doublestar.Match("*.json", entry.Name()); match {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		path := filepath.Join(l.dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			l.log.Warn("skipping unreadable hint file", "path", path, "error", err)
			continue
		}
		var file hintFile
		if err := json.Unmarshal(raw, &file); err != nil {
			l.log.Warn("skipping malformed hint file", "path", path, "error", err)
			continue
		}
		switch {
		case file.DocType != "":
			next.byDocType[file.DocType] = append(next.byDocType[file.DocType], file.Hints...)
		case file.Workflow != "":
			next.byWorkflow[file.Workflow] = append(next.byWorkflow[file.Workflow], file.Hints...)
		default:
			l.log.Warn("skipping hint file with no doctype or workflow key", "path", path)
			continue
		}
		loaded++
	}

	l.set.Store(next)
	l.log.Info("hints loaded", "dir", l.dir, "files", loaded)
	return nil
}

// ForDocType returns the hints registered for the named DocType.
func (l *Loader) ForDocType(name string) []Hint {
	return l.set.Load().byDocType[name]
}

// ForWorkflow returns the hints registered for the named workflow.
func (l *Loader) ForWorkflow(name string) []Hint {
	return l.set.Load().byWorkflow[name]
}

// Watch reloads the directory whenever its contents change, debouncing
// bursts of events. It blocks until the context is cancelled.
func (l *Loader) Watch(ctx context.Context) error {
	if l.dir == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return err
	}

	var pending *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if match, _ := doublestar.Match("*.json", filepath.Base(event.Name)); !match {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("hints watcher error", "error", err)
		case <-reload:
			if err := l.Load(); err != nil {
				l.log.Warn("hints reload failed", "error", err)
			}
		}
	}
}
