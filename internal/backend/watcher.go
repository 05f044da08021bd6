package backend

import (
	"log/slog"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
)

// WatchMsg is sent when the watched items file changes.
type WatchMsg struct {
	Path string
}

// Sender can receive messages (matches *tea.Program).
type Sender interface {
	Send(msg tea.Msg)
}

// Watcher monitors the API server's items file via fsnotify.
type Watcher struct {
	w      *fsnotify.Watcher
	sender Sender
	path   string
	done   chan struct{}
}

// NewWatcher watches the directory containing path, to catch creates and
// atomic renames as well as writes.
func NewWatcher(path string, sender Sender) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	watcher := &Watcher{
		w:      fw,
		sender: sender,
		path:   path,
		done:   make(chan struct{}),
	}
	go watcher.loop()
	return watcher, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			slog.Debug("items file changed", "path", event.Name, "op", event.Op.String())
			w.sender.Send(WatchMsg{Path: event.Name})

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
