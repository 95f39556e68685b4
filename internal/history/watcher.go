// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the write+rename burst of one atomic snapshot
// update into a single change event.
const debounceWindow = 250 * time.Millisecond

// Watcher reports external changes to the history snapshot, so a second
// instance of the program (or a manual edit) shows up without a restart.
//
// The parent directory is watched, not the file: the atomic rename that
// replaces the snapshot would otherwise detach a file-level watch.
type Watcher struct {
	fsw     *fsnotify.Watcher
	path    string
	changes chan struct{}
	done    chan struct{}
}

// NewWatcher starts watching the snapshot at path.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		fsw:     fsw,
		path:    path,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes delivers one signal per debounced batch of snapshot updates. The
// channel has capacity 1; a slow consumer sees at most one pending signal.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

// run filters directory events down to the snapshot file and debounces them.
func (w *Watcher) run() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are not fatal; the store still works, only live
			// refresh is lost.
		}
	}
}
