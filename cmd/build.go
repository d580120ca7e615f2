package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildFlags dirFlags

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the annotated documentation site",
	Long: `Renders markdown pages, annotates code blocks in rendered and copied HTML
files, copies assets and writes the annotation stylesheet and script to the
output directory.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildFlags.register(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	buildFlags.apply(cfg)

	builder, err := newBuilder(cfg, logger, "")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	result, err := builder.BuildAll(ctx)
	if err != nil {
		return fmt.Errorf("building site: %w", err)
	}

	fmt.Printf("Site built: %s (%d pages, %d annotations)\n", builder.OutputDir(), result.Pages, result.Annotations)
	return nil
}
