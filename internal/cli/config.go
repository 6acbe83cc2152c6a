package cli

import (
	"github.com/spf13/cobra"
)

func NewConfigCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
}
