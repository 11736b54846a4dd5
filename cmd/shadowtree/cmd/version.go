package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/cmd/shadowtree/internal/config"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// No project configuration is needed to print the version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shadowtree version %s (built %s), protocol %s\n",
				Version, BuildTime, config.ProtocolVersion)
		},
	}
}
