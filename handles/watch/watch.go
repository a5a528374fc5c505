// Package watch is a repo handle (spec.md §1's "the other repo handles
// ... watch"): it watches a directory tree and turns filesystem create,
// write, and remove events into store writes plus insertAction calls,
// the same way the write/delete/tcp-insert handles would for their own
// triggers. It never touches SyncEngine internals — only the InsertAction
// entrypoint every handle shares.
package watch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rjeczalik/notify"

	"github.com/WeiqiJust/NDN-Repo/internal/xlog"
	"github.com/WeiqiJust/NDN-Repo/store"
	"github.com/WeiqiJust/NDN-Repo/sync/action"
)

// Engine is the narrow slice of sync/engine.Engine a repo handle needs:
// enough to stamp and propagate a local mutation, never engine internals.
type Engine interface {
	InsertAction(kind action.Kind, dataName string) (action.Entry, error)
}

// Watcher mirrors a directory tree's create/write/remove events into
// store content and Engine actions.
type Watcher struct {
	root   string
	store  store.Store
	engine Engine
	logger *xlog.Logger

	events chan notify.EventInfo
	done   chan struct{}
}

// New constructs a Watcher over root. Call Start to begin watching.
func New(root string, st store.Store, eng Engine, logger *xlog.Logger) *Watcher {
	if logger == nil {
		logger = xlog.Root.New("component", "watch-handle")
	}
	return &Watcher{
		root:   filepath.Clean(root),
		store:  st,
		engine: eng,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start registers the recursive filesystem watch and begins processing
// events on a background goroutine.
func (w *Watcher) Start() error {
	w.events = make(chan notify.EventInfo, 128)
	if err := notify.Watch(filepath.Join(w.root, "..."), w.events, notify.Create, notify.Write, notify.Remove); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop unregisters the watch and halts event processing.
func (w *Watcher) Stop() {
	notify.Stop(w.events)
	close(w.done)
}

func (w *Watcher) loop() {
	for {
		select {
		case ei := <-w.events:
			w.handle(ei)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ei notify.EventInfo) {
	path := ei.Path()
	dataName := w.dataName(path)
	if dataName == "" {
		return
	}

	switch ei.Event() {
	case notify.Create, notify.Write:
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return
		}
		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Error("watch: read failed", "path", path, "err", err)
			return
		}
		if err := w.store.InsertData(dataName, content); err != nil {
			w.logger.Error("watch: store insert failed", "name", dataName, "err", err)
			return
		}
		if _, err := w.engine.InsertAction(action.Insertion, dataName); err != nil {
			w.logger.Error("watch: insertAction failed", "name", dataName, "err", err)
		}
	case notify.Remove:
		if err := w.store.DeleteData(dataName); err != nil {
			w.logger.Error("watch: store delete failed", "name", dataName, "err", err)
			return
		}
		if _, err := w.engine.InsertAction(action.Deletion, dataName); err != nil {
			w.logger.Error("watch: insertAction failed", "name", dataName, "err", err)
		}
	}
}

// dataName maps an absolute filesystem path under root to a hierarchical
// data name, e.g. root/a/b.txt -> /a/b.txt. Returns "" for paths outside
// root (notify.Watch never reports these, but a defensive check costs
// nothing).
func (w *Watcher) dataName(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return "/" + filepath.ToSlash(rel)
}
