package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/codenotes/internal/config"
	"github.com/ziadkadry99/codenotes/internal/logging"
)

var (
	cfgFile  string
	logFlags logging.Config
)

var rootCmd = &cobra.Command{
	Use:   "codenotes",
	Short: "Annotated code blocks for static documentation sites",
	Long: `Codenotes turns marker comments such as "# (1)!" inside documentation code
blocks into interactive tooltips, using the numbered explanation lists
written next to the blocks. It builds a static site from markdown and HTML
sources, annotates existing HTML in place, and serves the result with live
reload.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	logFlags.RegisterFlags(rootCmd.PersistentFlags())
	cobra.CheckErr(logFlags.RegisterCompletions(rootCmd))
}
