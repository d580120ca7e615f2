package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/codenotes/internal/annotate"
	"github.com/ziadkadry99/codenotes/internal/config"
	"github.com/ziadkadry99/codenotes/internal/progress"
	"github.com/ziadkadry99/codenotes/internal/site"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `codenotes init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// setup loads the config and installs the logger as the slog default.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logFlags.NewLogger(os.Stderr, cfg.Log.Level, string(cfg.Log.Format))
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// annotateOptions converts the annotations section of cfg.
func annotateOptions(cfg *config.Config, logger *slog.Logger) (annotate.Options, error) {
	styles, err := annotate.ParseStyles(cfg.Annotations.Syntaxes)
	if err != nil {
		return annotate.Options{}, err
	}
	return annotate.Options{
		ContainerSelector: cfg.Annotations.ContainerSelector,
		CodeSelector:      cfg.Annotations.CodeSelector,
		Display:           annotate.Display(cfg.Annotations.MarkerDisplay),
		Placeholder:       cfg.Annotations.Placeholder,
		InlineFallback:    cfg.Annotations.InlineFallback,
		OrdinalLists:      cfg.Annotations.OrdinalLists,
		Styles:            styles,
		Logger:            logger,
	}, nil
}

// dirFlags are the directory overrides shared by build, watch and serve.
type dirFlags struct {
	source  string
	output  string
	noClean bool
}

func (f *dirFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "override the source directory")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "override the output directory")
	cmd.Flags().BoolVar(&f.noClean, "no-clean", false, "keep existing files in the output directory")
}

func (f *dirFlags) apply(cfg *config.Config) {
	if f.source != "" {
		cfg.SourceDir = f.source
	}
	if f.output != "" {
		cfg.OutputDir = f.output
	}
	if f.noClean {
		cfg.Clean = false
	}
}

// newBuilder creates a site builder from cfg. liveReload is the websocket
// path to advertise, or empty.
func newBuilder(cfg *config.Config, logger *slog.Logger, liveReload string) (*site.Builder, error) {
	opts, err := annotateOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	return site.NewBuilder(site.Options{
		SourceDir:  cfg.SourceDir,
		OutputDir:  cfg.OutputDir,
		Title:      cfg.Title,
		Include:    cfg.Include,
		Exclude:    cfg.Exclude,
		Clean:      cfg.Clean,
		Annotate:   opts,
		LiveReload: liveReload,
		Reporter:   progress.NewReporter(),
		Logger:     logger,
	})
}

func debounceDelay(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
}

// signalContext is cancelled on interrupt or termination.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
