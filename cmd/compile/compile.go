// Package compile implements the "compile" subcommand: build a score
// file into a bundle file without invoking the external renderer.
package compile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scsess/scsess/internal/compiler"
	"github.com/scsess/scsess/internal/conf"
	"github.com/scsess/scsess/internal/render"
)

// Command builds the "compile" subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var duration float64
	var out string

	cmd := &cobra.Command{
		Use:   "compile [score.yaml]",
		Short: "Compile a score to a bundle file",
		Long:  `Compile builds a declarative score into an ordered sequence of timestamped OSC-like bundles and writes them to a bundle file, without invoking the external renderer.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			durationGiven := cmd.Flags().Changed("duration")
			if out == "" {
				return fmt.Errorf("--output is required")
			}

			result, err := compiler.CompileScore(args[0], duration, durationGiven)
			if err != nil {
				return err
			}

			if err := render.WriteBundleFile(out, result.Bundles); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bundles to %s\n", len(result.Bundles), out)
			return nil
		},
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.Flags().Float64Var(&duration, "duration", 0, "Override the session's intrinsic duration, in seconds")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Path to write the compiled bundle file")
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}
