// Package render implements the "render" subcommand: compile a score and
// hand the result to the external non-realtime renderer.
package render

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scsess/scsess/internal/compiler"
	"github.com/scsess/scsess/internal/conf"
	"github.com/scsess/scsess/internal/render"
)

// Command builds the "render" subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var duration float64
	var sampleRate int

	cmd := &cobra.Command{
		Use:   "render [score.yaml] [input-audio|_] [output]",
		Short: "Compile a score and render it to a sound file",
		Long:  `Render compiles a declarative score, writes the bundle file, and invokes the configured external renderer binary against it, per the invocation described in spec.md §6.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			durationGiven := cmd.Flags().Changed("duration")
			scorePath, inputPath, outputPath := args[0], args[1], args[2]

			result, err := compiler.CompileScore(scorePath, duration, durationGiven)
			if err != nil {
				return err
			}

			bundlePath := outputPath + ".bundle"
			if err := render.WriteBundleFile(bundlePath, result.Bundles); err != nil {
				return err
			}
			defer os.Remove(bundlePath)

			if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
			go func() {
				<-sigChan
				cancel()
			}()

			if inputPath == "_" {
				inputPath = ""
			}

			resolvedRate := sampleRate
			if resolvedRate == 0 {
				resolvedRate = settings.Compile.DefaultSampleRate
			}

			job := render.Job{
				BundlePath:     bundlePath,
				InputSoundFile: inputPath,
				OutputPath:     outputPath,
				SampleRate:     resolvedRate,
			}

			renderer := render.NewRenderer(*settings)
			if err := renderer.Run(ctx, job); err != nil {
				if err == context.Canceled {
					return nil
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rendered %s\n", outputPath)
			return nil
		},
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.Flags().Float64Var(&duration, "duration", 0, "Override the session's intrinsic duration, in seconds")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "Sample rate to pass to the renderer (defaults to compile.defaultsamplerate)")
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}
