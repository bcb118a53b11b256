// Command scsess is the non-realtime session compiler's CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/scsess/scsess/cmd"
	"github.com/scsess/scsess/internal/buildinfo"
	"github.com/scsess/scsess/internal/conf"
	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/events"
	"github.com/scsess/scsess/internal/logging"
	"github.com/scsess/scsess/internal/notify"
	"github.com/scsess/scsess/internal/telemetry"
)

// version and buildDate are set via -ldflags at release build time; they
// default to "unknown" (buildinfo.UnknownValue) for local `go run`/`go
// build` invocations, the same as the teacher's own version injection.
var (
	version   = buildinfo.UnknownValue
	buildDate = buildinfo.UnknownValue
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init()

	systemID, err := buildinfo.GenerateSystemID()
	if err != nil {
		systemID = buildinfo.UnknownValue
	}
	buildCtx := buildinfo.NewContext(version, buildDate, systemID)

	wireAmbientStack(settings)

	rootCmd := cmd.RootCommand(settings, buildCtx)
	if err := rootCmd.Execute(); err != nil {
		logging.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// wireAmbientStack connects the error/event/telemetry/notification
// packages the way the teacher's own startup sequence does: the events
// bus carries ErrorEvents (for telemetry), CompileEvents reach notify
// through the separate RegisterCompileConsumer fan-out, and
// internal/errors is pointed at the bus so a reported
// EnhancedError doesn't block the caller.
func wireAmbientStack(settings *conf.Settings) {
	bus, err := events.Initialize(events.DefaultConfig())
	if err != nil {
		logging.Warn("event bus initialization failed, continuing without async error reporting", "error", err)
		return
	}

	if err := events.InitializeErrorsIntegration(func(publisher any) {
		if p, ok := publisher.(errors.EventPublisher); ok {
			errors.SetEventPublisher(p)
		}
	}); err != nil {
		logging.Warn("errors/events integration failed", "error", err)
	}

	if reporter, err := telemetry.NewReporter(*settings); err != nil {
		logging.Warn("telemetry reporter initialization failed", "error", err)
	} else if reporter.IsEnabled() {
		errors.SetTelemetryReporter(reporter)
		if err := bus.RegisterConsumer(reporter); err != nil {
			logging.Warn("registering telemetry consumer failed", "error", err)
		}
	}

	notifier := notify.New(*settings)
	events.RegisterCompileConsumer(notifier)
}
