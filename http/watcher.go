package http

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifact reloads the model whenever the artifact file is rewritten,
// so a fresh training run takes effect without restarting the server. The
// directory is watched rather than the file itself because most tools
// replace the file via rename.
func (s *PredictorService) WatchArtifact(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.artifactPath)
	base := filepath.Base(s.artifactPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var reloadTimer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				// Debounce: a save can arrive as several events.
				if reloadTimer != nil {
					reloadTimer.Stop()
				}
				reloadTimer = time.AfterFunc(200*time.Millisecond, func() {
					if err := s.Reload(); err != nil {
						zap.S().Warnw("model reload failed", "path", s.artifactPath, "err", err)
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zap.S().Warnw("artifact watcher error", "err", err)

			case <-ctx.Done():
				return
			}
		}
	}()

	zap.S().Infow("watching model artifact", "path", s.artifactPath)
	return nil
}
