package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/codenotes/internal/config"
	"github.com/ziadkadry99/codenotes/internal/site"
	"github.com/ziadkadry99/codenotes/internal/watch"
)

var watchFlags dirFlags

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Build the site and rebuild files as they change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchFlags.register(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	watchFlags.apply(cfg)

	builder, err := newBuilder(cfg, logger, "")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if _, err := builder.BuildAll(ctx); err != nil {
		return fmt.Errorf("building site: %w", err)
	}

	fmt.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", builder.SourceDir())
	return watchAndRebuild(ctx, cfg, builder, logger, nil)
}

// watchAndRebuild rebuilds changed sources until ctx is cancelled. onRebuilt,
// if set, receives the output paths of every successful rebuild and nil
// paths with the error of a failed one.
func watchAndRebuild(ctx context.Context, cfg *config.Config, builder *site.Builder, logger *slog.Logger, onRebuilt func([]string, error)) error {
	w, err := watch.NewWatcher(builder.SourceDir(), cfg.Watch.Ignore, logger)
	if err != nil {
		return err
	}

	var mu sync.Mutex // Builder is not safe for concurrent use
	stop := watch.Debounced(w, debounceDelay(cfg), func(paths []string) {
		mu.Lock()
		defer mu.Unlock()

		result, err := builder.BuildFiles(ctx, paths)
		if err != nil {
			logger.Error("rebuild failed", slog.Any("error", err))
			if onRebuilt != nil {
				onRebuilt(nil, err)
			}
			return
		}
		if len(result.Written) == 0 {
			return
		}
		if onRebuilt != nil {
			onRebuilt(result.Written, nil)
		}
	})
	defer stop()

	return w.Run(ctx)
}
