package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var statusAddr string
	var logLevel string

	ctx := newCommandContext(&statusAddr, &logLevel)

	rootCmd := &cobra.Command{
		Use:           "bestcontent",
		Short:         "Export and transform literature content tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&statusAddr, "status-addr", "", "Serve run status on this address (host:port)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newDumpCommand(ctx))
	rootCmd.AddCommand(newProcessCommand(ctx))
	rootCmd.AddCommand(newShapesCommand())

	return rootCmd
}
