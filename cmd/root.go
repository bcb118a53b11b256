// Package cmd wires together the scsess CLI: the session compiler's
// command-line surface, following the teacher's cobra/viper root-command
// factory pattern (one Command(settings) constructor per subcommand
// package, assembled here).
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scsess/scsess/cmd/compile"
	"github.com/scsess/scsess/cmd/dump"
	"github.com/scsess/scsess/cmd/render"
	"github.com/scsess/scsess/cmd/serve"
	"github.com/scsess/scsess/cmd/version"
	"github.com/scsess/scsess/internal/buildinfo"
	"github.com/scsess/scsess/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings, buildCtx *buildinfo.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scsess",
		Short: "A non-realtime session compiler for computer-music scores",
		Long: `scsess compiles a declarative score (synthdefs, buses, buffers,
and a node timeline) into an ordered sequence of timestamped command
bundles an offline audio engine renders to a sound file.`,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(
		compile.Command(settings),
		render.Command(settings),
		dump.Command(settings),
		version.Command(buildCtx),
		serve.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags global to the command line interface.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
