package prefabs

import (
	"fmt"
	"log"
	"path/filepath"
	"time"
)

// Reloader re-applies a state set when the watcher reports a change to it or
// to any hook script. Poll is meant to be called from the host's tick so
// machines are only touched on their own goroutine.
type Reloader struct {
	events <-chan string
	errors <-chan error
	file   string
	apply  func(*StateSetSpec) error
	load   func(string) (*StateSetSpec, error)
	logger *log.Logger

	modTime time.Time
}

// NewReloader watches file through w and hands each fresh spec to apply.
func NewReloader(w *Watcher, file string, apply func(*StateSetSpec) error, logger *log.Logger) *Reloader {
	if logger == nil {
		logger = log.Default()
	}
	r := &Reloader{
		file:   cleanPrefabPath(file),
		apply:  apply,
		load:   LoadStateSet,
		logger: logger,
	}
	if w != nil {
		r.events = w.Events
		r.errors = w.Errors
	}
	r.modTime, _ = ModTime(r.file)
	return r
}

func (r *Reloader) relevant(path string) bool {
	if isScriptFile(path) {
		return true
	}
	return isSpecFile(path) && filepath.Base(path) == filepath.Base(r.file)
}

// Poll drains pending watcher events without blocking. It reloads at most
// once and reports whether it did.
func (r *Reloader) Poll() (bool, error) {
	if r == nil {
		return false, nil
	}
	changed := false
	for {
		select {
		case path, ok := <-r.events:
			if !ok {
				r.events = nil
				continue
			}
			if r.relevant(path) {
				changed = true
			}
			continue
		case err, ok := <-r.errors:
			if !ok {
				r.errors = nil
				continue
			}
			r.logger.Printf("prefabs: watch: %v", err)
			continue
		default:
		}
		break
	}
	if !changed {
		return false, nil
	}
	return true, r.Reload()
}

// Reload loads and applies the state set now.
func (r *Reloader) Reload() error {
	spec, err := r.load(r.file)
	if err != nil {
		return err
	}
	if t, ok := ModTime(r.file); ok {
		r.modTime = t
	}
	if err := r.apply(spec); err != nil {
		return fmt.Errorf("prefabs: reload %s: %w", r.file, err)
	}
	r.logger.Printf("prefabs: reloaded %s (%d states)", r.file, len(spec.States))
	return nil
}

// ModTime is the on-disk modification time seen at the last reload.
func (r *Reloader) ModTime() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.modTime
}
