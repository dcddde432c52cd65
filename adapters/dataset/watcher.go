package dataset

import (
	"context"
	"path/filepath"
	"time"

	"promolift/internal/errors"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce groups the burst of events an editor or copy produces
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls onChange after the dataset file is written, replaced or removed.
// It watches the parent directory because editors often replace files by rename.
type Watcher struct {
	fs       *fsnotify.Watcher
	target   string
	debounce time.Duration
	onChange func()
	log      *logrus.Entry
}

// NewWatcher starts watching the directory that holds path
func NewWatcher(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid dataset path %s", path)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", filepath.Dir(abs))
	}
	return &Watcher{
		fs:       fsw,
		target:   abs,
		debounce: debounce,
		onChange: onChange,
		log:      logrus.WithField("component", "DatasetWatcher"),
	}, nil
}

// Run delivers debounced change notifications until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	// fire is nil until a relevant event arrives
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.WithField("op", ev.Op.String()).Debug("dataset file changed")
			fire = time.After(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("file watcher error")
		case <-fire:
			fire = nil
			w.log.WithField("path", w.target).Info("dataset file changed")
			w.onChange()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
