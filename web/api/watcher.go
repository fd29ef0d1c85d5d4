package api

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StateChangeCallback is called with the JSON state files that changed.
type StateChangeCallback func(changedFiles []string)

// StateWatcher monitors the data directory for changes to the catalog
// and run-state documents, so the dashboard can refresh live.
type StateWatcher struct {
	watcher  *fsnotify.Watcher
	callback StateChangeCallback
	debounce time.Duration

	pending map[string]struct{}
	timer   *time.Timer
	mu      sync.Mutex

	cancel context.CancelFunc
}

// NewStateWatcher creates a watcher over the given data directory.
func NewStateWatcher(dataDir string, callback StateChangeCallback) (*StateWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dataDir); err != nil {
		watcher.Close()
		return nil, err
	}

	return &StateWatcher{
		watcher:  watcher,
		callback: callback,
		debounce: 500 * time.Millisecond, // Debounce rapid rewrites
		pending:  make(map[string]struct{}),
	}, nil
}

// Start begins watching for file changes
func (sw *StateWatcher) Start(ctx context.Context) {
	ctx, sw.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sw.watcher.Events:
				if !ok {
					return
				}
				sw.handleEvent(event)
			case _, ok := <-sw.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
}

// Stop stops watching for file changes
func (sw *StateWatcher) Stop() {
	if sw.cancel != nil {
		sw.cancel()
	}
	sw.watcher.Close()
}

func (sw *StateWatcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	// Documents are written via temp file plus rename.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.pending[event.Name] = struct{}{}

	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounce, sw.flush)
}

func (sw *StateWatcher) flush() {
	sw.mu.Lock()
	pending := sw.pending
	sw.pending = make(map[string]struct{})
	sw.mu.Unlock()

	if sw.callback == nil || len(pending) == 0 {
		return
	}

	files := make([]string, 0, len(pending))
	for f := range pending {
		files = append(files, f)
	}
	sw.callback(files)
}

// SetDebounce sets the debounce duration for batching file changes
func (sw *StateWatcher) SetDebounce(d time.Duration) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.debounce = d
}

// WatchAndBroadcast wires a state watcher into the server's SSE hub.
// Every change to a state document becomes a "state_changed" event.
func (s *Server) WatchAndBroadcast(ctx context.Context, dataDir string) (*StateWatcher, error) {
	watcher, err := NewStateWatcher(dataDir, func(files []string) {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = filepath.Base(f)
		}
		s.Broadcast(SSEEvent{Type: "state_changed", Data: names})
	})
	if err != nil {
		return nil, err
	}
	watcher.Start(ctx)
	return watcher, nil
}
