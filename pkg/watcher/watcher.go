package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/resection-analyzer/pkg/logging"
)

// ChangeEvent is a batch of modified patient input files
type ChangeEvent struct {
	Patients  []string // Patients whose inputs changed, sorted
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches patients' resection images and electrode tables
type FileWatcher struct {
	watcher *fsnotify.Watcher
	owners  map[string][]string // Cleaned file path -> patient IDs
	events  chan ChangeEvent
	done    chan struct{}
	once    sync.Once
}

// NewFileWatcher creates a watcher for inputs, a map from patient ID to the
// files that patient's results depend on
func NewFileWatcher(inputs map[string][]string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		owners:  make(map[string][]string),
		events:  make(chan ChangeEvent, 100),
		done:    make(chan struct{}),
	}
	for patientID, paths := range inputs {
		for _, p := range paths {
			clean := filepath.Clean(p)
			fw.owners[clean] = append(fw.owners[clean], patientID)
		}
	}
	return fw, nil
}

// Start watches the directories holding the input files. Editors often
// replace files instead of writing in place, so directories are watched
// rather than the files themselves.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for path := range fw.owners {
		dirs[filepath.Dir(path)] = true
	}

	watched := 0
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			logging.Warn("failed to watch directory", "path", dir, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 && len(dirs) > 0 {
		return fmt.Errorf("none of %d input directories could be watched", len(dirs))
	}

	logging.Info("watching patient inputs", "files", len(fw.owners), "directories", watched)

	go fw.processEvents(ctx)
	return nil
}

// processEvents batches file events that arrive close together
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var paths []string
	patients := make(map[string]bool)

	flushTimer := time.NewTimer(100 * time.Millisecond)
	flushTimer.Stop()

	flush := func() {
		if len(paths) == 0 {
			return
		}
		ids := make([]string, 0, len(patients))
		for id := range patients {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fw.events <- ChangeEvent{Patients: ids, Paths: paths, Timestamp: time.Now()}
		paths = nil
		patients = make(map[string]bool)
	}

	defer func() {
		_ = fw.watcher.Close()
		close(fw.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			owners, relevant := fw.owners[filepath.Clean(event.Name)]
			if !relevant {
				continue
			}
			logging.Trace("input changed", "path", event.Name, "op", event.Op.String())
			paths = append(paths, event.Name)
			for _, id := range owners {
				patients[id] = true
			}
			flushTimer.Reset(100 * time.Millisecond)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() {
	fw.once.Do(func() { close(fw.done) })
}
