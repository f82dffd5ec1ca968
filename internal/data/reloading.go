package data

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by lookups after Close.
var ErrClosed = errors.New("lookup closed")

// Opener opens the database at path.
type Opener func(path string) (CountryLookup, error)

// ReloadingLookup serves lookups from a database file and reopens it when
// the file changes on disk. A failed reopen keeps the previous database.
type ReloadingLookup struct {
	path     string
	open     Opener
	logger   *slog.Logger
	onReload func(error)

	mu      sync.RWMutex
	current CountryLookup

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// ReloadOption configures a ReloadingLookup.
type ReloadOption func(*ReloadingLookup)

// WithOpener replaces the function used to open the database.
func WithOpener(open Opener) ReloadOption {
	return func(r *ReloadingLookup) { r.open = open }
}

// WithReloadHook is called after every reload attempt with its result.
func WithReloadHook(fn func(error)) ReloadOption {
	return func(r *ReloadingLookup) { r.onReload = fn }
}

// NewReloadingLookup opens path and starts watching its directory.
func NewReloadingLookup(path string, logger *slog.Logger, opts ...ReloadOption) (*ReloadingLookup, error) {
	r := &ReloadingLookup{
		path:     filepath.Clean(path),
		open:     OpenMmdb,
		logger:   logger,
		onReload: func(error) {},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	current, err := r.open(r.path)
	if err != nil {
		return nil, err
	}
	r.current = current

	// Watch the directory so atomic rename-into-place replacements are seen.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		current.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		current.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(r.path), err)
	}
	r.watcher = watcher

	go r.watch()
	return r, nil
}

func (r *ReloadingLookup) LookupCountry(ip net.IP) (Country, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Country{}, ErrClosed
	}
	return r.current.LookupCountry(ip)
}

// Ready reports an error once the lookup has been closed.
func (r *ReloadingLookup) Ready() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return ErrClosed
	}
	return nil
}

// Close stops watching and closes the current database.
func (r *ReloadingLookup) Close() error {
	werr := r.watcher.Close()
	<-r.done

	r.mu.Lock()
	current := r.current
	r.current = nil
	r.mu.Unlock()

	if current == nil {
		return werr
	}
	return errors.Join(werr, current.Close())
}

func (r *ReloadingLookup) watch() {
	defer close(r.done)
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != r.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				r.reload()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("mmdb watcher error", "path", r.path, "error", err)
		}
	}
}

func (r *ReloadingLookup) reload() {
	next, err := r.open(r.path)
	r.onReload(err)
	if err != nil {
		r.logger.Warn("mmdb reload failed, keeping previous database", "path", r.path, "error", err)
		return
	}

	r.mu.Lock()
	prev := r.current
	r.current = next
	r.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			r.logger.Warn("close previous mmdb", "path", r.path, "error", err)
		}
	}
	r.logger.Info("mmdb reloaded", "path", r.path)
}
