package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/codenotes/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize codenotes configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure codenotes for your project and writes the config file (.codenotes.yml by default).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s. Run `codenotes build` to build %s into %s.\n", cfgFile, cfg.SourceDir, cfg.OutputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
