package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	errs "github.com/matzehuels/sizemap/pkg/errors"
	"github.com/matzehuels/sizemap/pkg/pipeline"
)

// watchDebounce collapses the burst of events a single save produces.
const watchDebounce = 200 * time.Millisecond

// watchRender renders input, then again every time it changes, until ctx
// is cancelled. Render errors are reported and waited out; only watcher
// failures end the loop.
func (c *CLI) watchRender(ctx context.Context, runner *pipeline.Runner, input string, po pipeline.Options, opts *renderOpts, stdout io.Writer) error {
	logger := loggerFromContext(ctx)

	path, err := filepath.Abs(input)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", input)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and "du > file" often replace the file
	// rather than writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	render := func() {
		if err := runRender(ctx, runner, input, po, opts, nil, stdout); err != nil {
			printError("%s", errs.UserMessage(err))
		}
	}

	render()
	printInfo("Watching %s (ctrl+c to stop)", input)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("stopped watching", "file", input)
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isChange(event, path) {
				continue
			}
			logger.Debug("input changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", input, err)
		}
	}
}

// isChange reports whether event means path has new content.
func isChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write) != 0
}
