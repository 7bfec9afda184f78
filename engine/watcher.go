package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// PayloadWatcher delivers the contents of an analysis file each time an
// external producer rewrites it. The parent directory is watched so
// atomic rename-into-place writes are seen too.
type PayloadWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	out      chan string
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	log      *zap.Logger
}

// NewPayloadWatcher creates a watcher for path.
func NewPayloadWatcher(path string, log *zap.Logger) (*PayloadWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &PayloadWatcher{
		watcher:  w,
		path:     abs,
		out:      make(chan string, 1),
		debounce: 150 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Payloads yields file contents. Only the latest pending payload is kept.
func (pw *PayloadWatcher) Payloads() <-chan string { return pw.out }

// Start begins watching. If the file already exists its current contents
// are delivered first.
func (pw *PayloadWatcher) Start(ctx context.Context) error {
	pw.mu.Lock()
	if pw.running {
		pw.mu.Unlock()
		return nil
	}
	pw.running = true
	pw.mu.Unlock()

	if err := pw.watcher.Add(filepath.Dir(pw.path)); err != nil {
		pw.mu.Lock()
		pw.running = false
		pw.mu.Unlock()
		pw.watcher.Close()
		return err
	}
	pw.log.Debug("watching analysis payload", zap.String("path", pw.path))
	if _, err := os.Stat(pw.path); err == nil {
		pw.emit()
	}
	go pw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (pw *PayloadWatcher) Stop() {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		return
	}
	pw.running = false
	pw.mu.Unlock()

	close(pw.stopCh)
	<-pw.doneCh
	if err := pw.watcher.Close(); err != nil {
		pw.log.Warn("closing payload watcher", zap.Error(err))
	}
}

func (pw *PayloadWatcher) run(ctx context.Context) {
	defer close(pw.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-pw.stopCh:
			return
		case ev, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != pw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(pw.debounce)
			} else {
				timer.Reset(pw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			pw.emit()
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.log.Warn("payload watcher error", zap.Error(err))
		}
	}
}

func (pw *PayloadWatcher) emit() {
	data, err := os.ReadFile(pw.path)
	if err != nil {
		pw.log.Debug("payload read failed", zap.Error(err))
		return
	}
	// Drop a stale pending payload; the newest one supersedes it.
	select {
	case <-pw.out:
	default:
	}
	select {
	case pw.out <- string(data):
	default:
	}
}
