// Package commands implements the peppolctl command tree.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/xe-erp/peppol-web/internal/app"
)

var (
	cfg    *app.Config
	logger *slog.Logger
)

// Execute runs the root command.
func Execute() error {
	return rootCmd().Execute()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "peppolctl",
		Short:         "Operate the Peppol actions of the web client from a terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg != nil {
				return nil
			}
			loaded, err := app.LoadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			logger = app.NewLogger(cfg)
			return nil
		},
	}
	root.AddCommand(callCmd(), jobsCmd(), menuCmd(), auditCmd())
	return root
}
