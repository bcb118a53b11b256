// Package dump implements the "dump" subcommand: compile a score and
// print the resulting bundle sequence as human-readable YAML, without
// writing a bundle file or invoking the renderer.
package dump

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/scsess/scsess/internal/compiler"
	"github.com/scsess/scsess/internal/conf"
	"github.com/scsess/scsess/internal/osc"
)

// dumpMessage is the YAML-friendly rendering of one osc.Message.
type dumpMessage struct {
	Address string `yaml:"address"`
	Args    []any  `yaml:"args"`
}

// dumpBundle is the YAML-friendly rendering of one planner.Bundle.
type dumpBundle struct {
	Offset   float64       `yaml:"offset"`
	Messages []dumpMessage `yaml:"messages"`
}

// Command builds the "dump" subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var duration float64

	cmd := &cobra.Command{
		Use:   "dump [score.yaml]",
		Short: "Compile a score and print its bundle sequence",
		Long:  `Dump compiles a declarative score and prints the resulting bundle sequence as YAML, for inspecting the exact wire messages a compile would emit without writing a bundle file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			durationGiven := cmd.Flags().Changed("duration")

			result, err := compiler.CompileScore(args[0], duration, durationGiven)
			if err != nil {
				return err
			}

			out := make([]dumpBundle, 0, len(result.Bundles))
			for _, b := range result.Bundles {
				db := dumpBundle{Offset: b.Offset}
				for _, msg := range b.Messages {
					db.Messages = append(db.Messages, renderMessage(msg))
				}
				out = append(out, db)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(out)
		},
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.Flags().Float64Var(&duration, "duration", 0, "Override the session's intrinsic duration, in seconds")
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}

func renderMessage(m osc.Message) dumpMessage {
	args := make([]any, 0, len(m.Args))
	for _, a := range m.Args {
		switch a.Kind {
		case osc.ArgInt32:
			args = append(args, a.Int)
		case osc.ArgFloat32:
			args = append(args, a.Float)
		case osc.ArgString:
			args = append(args, a.Str)
		case osc.ArgBlob:
			args = append(args, a.Blob)
		}
	}
	return dumpMessage{Address: m.Address, Args: args}
}
