package render

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/scsess/scsess/internal/conf"
	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/logging"
)

var logger = logging.ForService("render")

// Renderer invokes an external non-realtime synthesis server against a
// compiled bundle file, the way the compiler hands off to the sound
// engine once a session is fully planned.
type Renderer struct {
	settings conf.Settings
}

// NewRenderer returns a Renderer configured from settings.Render.
func NewRenderer(settings conf.Settings) *Renderer {
	return &Renderer{settings: settings}
}

// Job describes a single render invocation.
type Job struct {
	BundlePath     string
	InputSoundFile string
	OutputPath     string
	SampleRate     int
	Channels       int
}

// Run locates the configured renderer binary, preflights disk space for
// the output, and drives the binary over the compiled bundle file.
// Output and error lines are logged as they stream in; Run blocks until
// the renderer exits or ctx is canceled.
func (r *Renderer) Run(ctx context.Context, job Job) error {
	binary, err := exec.LookPath(r.settings.Render.Binary)
	if err != nil {
		return errors.RendererNotFound(fmt.Sprintf("renderer binary %q not found on PATH", r.settings.Render.Binary))
	}

	if err := r.checkDiskSpace(job.OutputPath); err != nil {
		return err
	}

	args := r.buildArgs(job)
	logger.Debug("starting renderer process",
		"binary", binary,
		"bundle", job.BundlePath,
		"output", job.OutputPath,
		"sample_rate", job.SampleRate)

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = r.settings.Render.OutputDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryConfiguration).
			Context("operation", "create-stdout-pipe").
			Build()
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryConfiguration).
			Context("operation", "create-stderr-pipe").
			Build()
	}

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryGeneric).
			Context("operation", "start-renderer").
			Context("binary", binary).
			Build()
	}

	go streamLines(stdout, "stdout")
	go streamLines(stderr, "stderr")

	if err := cmd.Wait(); err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryGeneric).
			Context("operation", "renderer-exit").
			Context("binary", binary).
			Build()
	}

	logger.Info("renderer process completed",
		"output", job.OutputPath,
		"duration_ms", time.Since(startTime).Milliseconds())
	return nil
}

// buildArgs assembles the renderer's non-realtime command line:
// bundle file, optional input sound file, output path, and the
// header/sample format pair, followed by any configured server options.
func (r *Renderer) buildArgs(job Job) []string {
	input := job.InputSoundFile
	if input == "" {
		input = "_"
	}

	args := []string{
		"-N", job.BundlePath,
		input,
		job.OutputPath,
		fmt.Sprintf("%d", job.SampleRate),
		r.settings.Render.HeaderFormat,
		r.settings.Render.SampleFormat,
	}
	args = append(args, r.settings.Render.ServerOptions...)
	return args
}

// checkDiskSpace confirms the filesystem holding outputPath's directory
// has room before handing off to the renderer, so a long render doesn't
// fail partway through with a full disk.
func (r *Renderer) checkDiskSpace(outputPath string) error {
	dir := filepath.Dir(outputPath)
	usage, err := disk.Usage(dir)
	if err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryGeneric).
			Context("operation", "check-disk-space").
			Context("path", dir).
			Build()
	}

	const minFreeBytes = 64 * 1024 * 1024
	if usage.Free < minFreeBytes {
		return errors.Newf("only %d bytes free at %s, need at least %d", usage.Free, dir, minFreeBytes).
			Component("render").
			Category(errors.CategoryGeneric).
			Context("path", dir).
			Context("free_bytes", usage.Free).
			Build()
	}
	return nil
}

func streamLines(r io.Reader, stream string) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			logger.Debug("renderer output", "stream", stream, "data", string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}
