package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/codenotes/internal/annotate"
	"github.com/ziadkadry99/codenotes/internal/server"
)

var (
	serveFlags dirFlags
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build and serve the site with live reload",
	Long: `Builds the site, serves it over HTTP and, unless --watch=false, rebuilds
changed sources and reloads open pages. The server also exposes
POST /api/annotate, which annotates an HTML fragment sent in the body.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (defaults to serve.port)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", true, "rebuild and reload on source changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	serveFlags.apply(cfg)
	if servePort != 0 {
		cfg.Serve.Port = servePort
	}

	live := ""
	if serveWatch {
		live = server.LiveReloadPath
	}
	builder, err := newBuilder(cfg, logger, live)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if _, err := builder.BuildAll(ctx); err != nil {
		return fmt.Errorf("building site: %w", err)
	}

	opts, err := annotateOptions(cfg, logger)
	if err != nil {
		return err
	}
	processor, err := annotate.NewProcessor(opts)
	if err != nil {
		return err
	}
	srv := server.New(server.Config{
		Port:     cfg.Serve.Port,
		Dir:      builder.OutputDir(),
		AllowAll: cfg.Serve.AllowAllOrigins,
	}, processor, logger)

	if serveWatch {
		go func() {
			err := watchAndRebuild(ctx, cfg, builder, logger, func(paths []string, err error) {
				if err != nil {
					srv.Hub().NotifyError(err)
					return
				}
				srv.Hub().NotifyRebuilt(paths)
			})
			if err != nil {
				logger.Error("watching sources", slog.Any("error", err))
				cancel()
			}
		}()
	}

	fmt.Printf("Serving %s at http://localhost:%d. Press Ctrl+C to stop.\n", builder.OutputDir(), cfg.Serve.Port)
	return srv.Run(ctx)
}
