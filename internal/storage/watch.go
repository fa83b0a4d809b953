package storage

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch calls onChange whenever filename is written, created or renamed into
// place, until ctx is done. The parent directory is watched so editors that
// replace the file are noticed too. onChange runs on the watcher goroutine.
func Watch(ctx context.Context, filename string, onChange func()) error {
	path, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}

	log.Debugf("watching %s", path)
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					log.Debugf("watched file event: %v", ev)
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Errorf("error whilst watching %s: %v", path, err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
