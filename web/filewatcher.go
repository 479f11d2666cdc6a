package web

// fileChangeNotifier watches for writes to files in the specified
// directories having the configured suffixes. It drives the
// development-mode template reload in StartServer.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// defaultFlushDuration sets the time given to wait for multiple editor writes
const defaultFlushDuration time.Duration = 25 * time.Millisecond

// dirFilesDescriptor is a combination of a directory and files with the
// specified suffixes to watch under it.
type dirFilesDescriptor struct {
	dir          string
	fileSuffixes []string
}

// fileChangeNotifier is a type holding one or more dirFilesDescriptor
// watchers.
type fileChangeNotifier struct {
	dirFiles         []dirFilesDescriptor
	dirDescriptorMap map[string][]string
	watcher          *fsnotify.Watcher
	update           chan bool
	flushDuration    time.Duration
}

// newFileChangeNotifier registers a fileChangeNotifier.
//
// Note that suffixes provided without the leading "dot" ('.') have this
// prepended to the provided suffix.
//
// Refer to
// https://github.com/fsnotify/fsnotify/blob/v1.8.0/cmd/fsnotify/file.go
func newFileChangeNotifier(descriptors []dirFilesDescriptor) (*fileChangeNotifier, error) {

	if len(descriptors) < 1 {
		return nil, fmt.Errorf("at least one dir/filematch descriptor needed")
	}

	fcn := fileChangeNotifier{
		dirFiles:         descriptors,
		dirDescriptorMap: map[string][]string{},
		update:           make(chan bool),
		flushDuration:    defaultFlushDuration,
	}

	var err error
	fcn.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify new watcher error: %w", err)
	}

	for _, desc := range fcn.dirFiles {
		dir := filepath.Clean(desc.dir)
		check, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("dir %q not found: %w", dir, err)
		}
		if !check.IsDir() {
			return nil, fmt.Errorf("%q is not a directory", dir)
		}
		if _, found := fcn.dirDescriptorMap[dir]; found {
			return nil, fmt.Errorf("%q already registered", dir)
		}
		err = fcn.watcher.Add(dir)
		if err != nil {
			return nil, fmt.Errorf("fsnotify add error for dir %q: %w", dir, err)
		}

		// add the suffixes, prepending "." if necessary.
		fcn.dirDescriptorMap[dir] = []string{}
		for _, ix := range desc.fileSuffixes {
			if len(ix) > 0 && ix[0] != byte('.') {
				ix = string('.') + ix
			}
			fcn.dirDescriptorMap[dir] = append(fcn.dirDescriptorMap[dir], ix)
		}
	}
	return &fcn, nil
}

// watch watches the filesystem for the registered events, returning any
// error found while doing so. watch blocks, so needs to be run in a
// goroutine.
//
// Consumers should iterate over [fileChangeNotifier.updates] to receive
// notice of a file write event requiring a refresh.
func (fcn *fileChangeNotifier) watch(ctx context.Context) error {

	// eventChan is an internal chan used for buffering editor writes.
	eventChan := make(chan bool)

	g, ctx := errgroup.WithContext(ctx)

	// This goroutine watches for *fsnotify.Watcher events.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err, ok := <-fcn.watcher.Errors:
				if !ok {
					return errors.New("unexpected close from watcher.Errors")
				}
				return fmt.Errorf("unexpected notify error: %w", err)

			// An event has been received.
			case e, ok := <-fcn.watcher.Events:
				if !ok {
					return errors.New("unexpected close from watcher.Events")
				}
				// skip events that aren't writes
				if !e.Has(fsnotify.Write) {
					continue
				}
				dir := filepath.Dir(e.Name)
				basename := filepath.Base(e.Name)

				// ignore dot files
				if len(basename) > 0 && basename[0] == '.' {
					continue
				}

				// check the suffixes for this directory
				suffixes, ok := fcn.dirDescriptorMap[dir]
				if !ok {
					return fmt.Errorf("could not find matcher for dir %q", dir)
				}
				for _, ix := range suffixes {
					if strings.HasSuffix(strings.ToLower(basename), strings.ToLower(ix)) {
						eventChan <- true
					}
				}
			}
		}
	})

	// Simple buffer of double writes by editors like vim. This
	// goroutine will exit if the context is Done or eventChan is
	// closed.
	g.Go(func() error {
		flush := false
		timer := time.NewTicker(fcn.flushDuration)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			// Stack writes in the same flushDuration, giving time for
			// the writes to complete.
			case _, ok := <-eventChan:
				if !ok {
					return nil
				}
				flush = true
				timer.Reset(fcn.flushDuration)
			case <-timer.C:
				if flush {
					fcn.update <- true
					flush = false
				}
			}
		}
	})

	err := g.Wait()
	close(eventChan)
	close(fcn.update)
	_ = fcn.watcher.Close()
	return err
}

// updates returns a channel signalling a file refresh event.
func (fcn *fileChangeNotifier) updates() <-chan bool {
	return fcn.update
}

// swappableHandler is an http.Handler whose inner handler can be
// replaced while serving, used for development-mode route rebuilds.
type swappableHandler struct {
	mu      sync.RWMutex
	handler http.Handler
}

func newSwappableHandler(h http.Handler) *swappableHandler {
	return &swappableHandler{handler: h}
}

// ServeHTTP fulfills http.Handler for swappableHandler.
func (s *swappableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	h.ServeHTTP(w, r)
}

// swap replaces the inner handler.
func (s *swappableHandler) swap(h http.Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// watchTemplates watches the on-disk template directory for writes,
// rebuilding the routes (and so re-parsing each endpoint's templates)
// on each change. Only useful in development mode where the templates
// are mounted from disk.
func (web *WebApp) watchTemplates(ctx context.Context, handler *swappableHandler) error {
	notifier, err := newFileChangeNotifier([]dirFilesDescriptor{
		{dir: web.cfg.Web.TemplatesPath, fileSuffixes: []string{".html"}},
	})
	if err != nil {
		return err
	}

	go func() {
		for range notifier.updates() {
			web.log.Info("templates changed, rebuilding routes")
			handler.swap(web.routes())
		}
	}()

	return notifier.watch(ctx)
}
