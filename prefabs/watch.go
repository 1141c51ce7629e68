package prefabs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports changed state set and script files to a Reloader. It only
// forwards paths; the Reloader decides when to re-apply, on the host's tick.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches each directory and its scripts subdirectory when present.
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		scripts := filepath.Join(dir, "scripts")
		if info, err := os.Stat(scripts); err == nil && info.IsDir() {
			if err := w.Add(scripts); err != nil {
				_ = w.Close()
				return nil, err
			}
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.forward()
	return watcher, nil
}

func (w *Watcher) Close() error {
	if w == nil || w.watcher == nil {
		return nil
	}
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// forward debounces editor save bursts per file and passes the rest on.
func (w *Watcher) forward() {
	seen := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isSpecFile(event.Name) && !isScriptFile(event.Name) || isHidden(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := seen[event.Name]; ok && now.Sub(t) < watchDebounce {
				continue
			}
			seen[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// isHidden skips editor swap and backup files such as .humanoid.yaml.swp.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func isScriptFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tengo")
}
