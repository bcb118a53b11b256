// Package version implements the "version" subcommand.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scsess/scsess/internal/buildinfo"
)

// Command builds the "version" subcommand, printing the build info
// carried in ctx (see internal/buildinfo).
func Command(ctx *buildinfo.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "scsess %s (built %s, system %s)\n",
				ctx.Version(), ctx.BuildDate(), ctx.SystemID())
			return nil
		},
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd
}
