package runner

import (
	"github.com/fsnotify/fsnotify"

	"github.com/orbislab/featsweep/internal/logger"
)

// watch observes the artifact directory for the duration of one run so
// verbose sweeps show artifacts as the program produces them. Watching
// is best effort: a watch failure never fails the run.
func (e *Exec) watch() (stop func()) {
	if e.watchDir == "" || !logger.IsVerbose() {
		return func() {}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Debug("artifact watch unavailable: %v", err)
		return func() {}
	}
	if err := watcher.Add(e.watchDir); err != nil {
		logger.Debug("artifact watch on %s unavailable: %v", e.watchDir, err)
		watcher.Close()
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Create) {
					logger.Debug("artifact appeared: %s", event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug("artifact watch: %v", err)
			}
		}
	}()

	return func() {
		watcher.Close()
		<-done
	}
}
