// Package watcher observes the local theme directory and mirrors changes
// to the remote store over the transfer service.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Innovate-group/tiendanubecli/internal/paths"
)

// debounceDelay coalesces the bursts of write events editors produce when
// saving a file.
const debounceDelay = 500 * time.Millisecond

// Uploader is the slice of the transfer service the watcher needs.
type Uploader interface {
	UploadFile(ctx context.Context, localPath, remotePath string) error
	DeleteFile(ctx context.Context, remotePath string) error
	MakeDir(ctx context.Context, remotePath string) error
	RemoveDir(ctx context.Context, remotePath string) error
}

// Watcher mirrors local filesystem events to remote operations. Failures
// are logged, never fatal: a bad event must not end a watch session.
type Watcher struct {
	uploader   Uploader
	translator *paths.Translator
	log        *zap.SugaredLogger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher that uploads through the given uploader.
func New(uploader Uploader, translator *paths.Translator, log *zap.SugaredLogger) *Watcher {
	return &Watcher{
		uploader:   uploader,
		translator: translator,
		log:        log,
		pending:    make(map[string]*time.Timer),
	}
}

// Run watches the theme directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	root := w.translator.LocalRoot()
	if err := addRecursive(fsw, root); err != nil {
		return err
	}

	w.log.Infow("watching for changes", "dir", root)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	if ignored(event.Name) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			w.createDir(ctx, fsw, event.Name)
			return
		}
		w.scheduleUpload(ctx, event.Name)

	case event.Op.Has(fsnotify.Write):
		w.scheduleUpload(ctx, event.Name)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.remove(ctx, event.Name)
	}
}

// scheduleUpload debounces rapid write bursts per path, then uploads.
func (w *Watcher) scheduleUpload(ctx context.Context, localPath string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[localPath]; ok {
		timer.Stop()
	}
	w.pending[localPath] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, localPath)
		w.mu.Unlock()
		w.upload(ctx, localPath)
	})
}

func (w *Watcher) upload(ctx context.Context, localPath string) {
	remote, err := w.translator.ToRemote(localPath)
	if err != nil {
		w.log.Warnw("ignoring file outside theme directory", "path", localPath)
		return
	}
	if err := w.uploader.UploadFile(ctx, localPath, remote); err != nil {
		w.log.Errorw("upload failed", "path", localPath, "error", err)
	}
}

func (w *Watcher) createDir(ctx context.Context, fsw *fsnotify.Watcher, localPath string) {
	remote, err := w.translator.ToRemote(localPath)
	if err != nil {
		return
	}
	if err := w.uploader.MakeDir(ctx, remote); err != nil {
		w.log.Warnw("remote mkdir failed", "path", remote, "error", err)
	}
	if err := addRecursive(fsw, localPath); err != nil {
		w.log.Warnw("could not watch new directory", "path", localPath, "error", err)
	}
}

func (w *Watcher) remove(ctx context.Context, localPath string) {
	remote, err := w.translator.ToRemote(localPath)
	if err != nil {
		return
	}
	if err := w.uploader.DeleteFile(ctx, remote); err != nil {
		// The path may have been a directory; try that before giving up.
		if rmErr := w.uploader.RemoveDir(ctx, remote); rmErr != nil {
			w.log.Errorw("remote delete failed", "path", remote, "error", err)
		}
	}
}

// addRecursive registers dir and every subdirectory with the fs watcher.
func addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if ignored(path) && path != dir {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// ignored filters dotfiles and editor noise out of the sync.
func ignored(p string) bool {
	base := filepath.Base(p)
	if base == "." || base == ".." {
		return false
	}
	if strings.HasPrefix(base, ".") {
		return true
	}
	return strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}
