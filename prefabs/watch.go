package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 100 * time.Millisecond

type ChangeKind int

const (
	SpecChanged ChangeKind = iota
	ScriptChanged
)

func (k ChangeKind) String() string {
	switch k {
	case SpecChanged:
		return "spec"
	case ScriptChanged:
		return "script"
	default:
		return "unknown"
	}
}

// Change is a debounced edit to a prefab or guard script. Name is the file's
// base name, ready to pass to Load or LoadScript.
type Change struct {
	Name string
	Path string
	Kind ChangeKind
}

// Watcher reports edits under the prefab directories. The game loop drains
// Events between frames, so tuning is never swapped mid-phase.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	now      func() time.Time

	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(debounce time.Duration, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher := &Watcher{
		watcher:  w,
		debounce: debounce,
		now:      time.Now,
		Events:   make(chan Change, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	d := debouncer{window: w.debounce, last: map[string]time.Time{}}
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			change, ok := classify(event)
			if !ok || !d.admit(change.Path, w.now()) {
				continue
			}
			select {
			case w.Events <- change:
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

func classify(event fsnotify.Event) (Change, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return Change{}, false
	}
	c := Change{Name: filepath.Base(event.Name), Path: event.Name}
	switch {
	case isSpecFile(event.Name):
		c.Kind = SpecChanged
	case isScriptFile(event.Name):
		c.Kind = ScriptChanged
	default:
		return Change{}, false
	}
	return c, true
}

// debouncer drops repeat events for one path inside the window. Editors
// commonly write a file several times per save.
type debouncer struct {
	window time.Duration
	last   map[string]time.Time
}

func (d *debouncer) admit(path string, now time.Time) bool {
	if t, ok := d.last[path]; ok && now.Sub(t) < d.window {
		return false
	}
	d.last[path] = now
	return true
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
