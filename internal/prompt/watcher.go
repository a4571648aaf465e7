package prompt

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch recompiles the template whenever its file changes, until ctx is done.
// The parent directory is watched so editors that save via rename are seen.
// A template that fails to compile is logged and the previous one kept.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.cfg.Path == "" || !r.cfg.Watch {
		return errors.New("prompt: watch requires a template path with watching enabled")
	}
	target, err := filepath.Abs(r.cfg.Path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Error("prompt.watch.create_failed", "error", err)
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		r.logger.Error("prompt.watch.add_failed", "dir", filepath.Dir(target), "error", err)
		_ = w.Close()
		return err
	}
	r.logger.Info("prompt.watch.start", "path", target)

	go func() {
		defer func() {
			if err := w.Close(); err != nil {
				r.logger.Warn("prompt.watch.close_error", "error", err)
			}
		}()

		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				name, _ := filepath.Abs(e.Name)
				if name != target || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					if err := r.reload(); err != nil {
						r.logger.Warn("prompt.watch.reload_failed", "path", target, "error", err)
						return
					}
					r.logger.Info("prompt.watch.reloaded", "path", target)
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				r.logger.Error("prompt.watch.error", "error", err)
			}
		}
	}()
	return nil
}
