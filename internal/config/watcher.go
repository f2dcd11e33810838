package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses the bursts of write events editors produce
// when saving.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a configuration file when it changes on disk. The
// parent directory is watched rather than the file itself, so editors
// that save via rename keep working.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(Config)

	fs   *fsnotify.Watcher
	done chan struct{}
	once sync.Once
	log  zerolog.Logger
}

// Watch starts watching path and calls onChange with each successfully
// reloaded configuration. Invalid intermediate states are logged and
// skipped.
func Watch(path string, onChange func(Config), log zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: onChange,
		fs:       fs,
		done:     make(chan struct{}),
		log:      log,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watch error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn().Str("path", w.path).Err(err).Msg("config reload skipped")
		return
	}
	w.log.Info().Str("path", w.path).Msg("config reloaded")
	w.onChange(cfg)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
