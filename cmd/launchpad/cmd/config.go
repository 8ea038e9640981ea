package cmd

import (
	"github.com/rovshanmuradov/launchpad/internal/ui/report"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report.New(cmd.OutOrStdout()).Config(a.cfg)
		},
	}
}
