package main

import (
	"github.com/spf13/cobra"

	"github.com/gardar/ocrbatch/pkg/config"
)

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "ocrbatch",
		Short:         "Make scanned PDFs searchable",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")

	load := func() (*config.Config, error) {
		return config.Load(configPath)
	}
	rootCmd.AddCommand(newRunCommand(load))
	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newConfigCommand(load))
	return rootCmd
}
