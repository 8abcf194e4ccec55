package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sho7650/toasty/internal/watcher"
)

// WatchStatus prints the status matrix and reprints it whenever one of the
// integration config files changes, until ctx is cancelled.
func (r *Runner) WatchStatus(ctx context.Context, log zerolog.Logger) error {
	r.Status()

	w, err := watcher.New(r.ConfigPaths())
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	for _, dir := range w.Watching() {
		log.Debug().Str("dir", dir).Msg("watching")
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Watching configuration files... (Ctrl+C to stop)")

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			fmt.Fprintln(r.out, "Stopped.")
			return nil

		case event := <-w.Events():
			log.Debug().Str("path", event.Path).Str("op", event.Op.String()).Msg("config changed")
			fmt.Fprintln(r.out, "---")
			r.Status()

		case err := <-w.Errors():
			log.Error().Err(err).Msg("watch error")
		}
	}
}
