package conf

import (
	"fmt"
	"strings"

	"github.com/scsess/scsess/internal/errors"
)

// ValidationError collects every Settings problem found in one pass, so a
// user fixing config.yaml sees all mistakes at once instead of one at a time.
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(ve.Errors, "; "))
}

// Validate checks Settings for internally-inconsistent or out-of-range
// values. It returns a ValidationError value wrapped as a CategoryConfiguration
// EnhancedError, or nil.
func Validate(settings *Settings) error {
	ve := ValidationError{}

	if settings.Compile.DefaultSampleRate <= 0 {
		ve.Errors = append(ve.Errors, "compile.defaultsamplerate must be positive")
	}

	switch settings.Render.HeaderFormat {
	case "aiff", "wav", "next", "ircam", "raw":
	default:
		ve.Errors = append(ve.Errors, fmt.Sprintf("render.headerformat %q is not a recognized sound file header", settings.Render.HeaderFormat))
	}

	switch settings.Render.SampleFormat {
	case "int8", "int16", "int24", "int32", "float", "double", "mulaw", "alaw":
	default:
		ve.Errors = append(ve.Errors, fmt.Sprintf("render.sampleformat %q is not a recognized sample format", settings.Render.SampleFormat))
	}

	if settings.Render.Binary == "" {
		ve.Errors = append(ve.Errors, "render.binary must not be empty")
	}

	if settings.Telemetry.Enabled && settings.Telemetry.DSN == "" {
		ve.Errors = append(ve.Errors, "telemetry.dsn must be set when telemetry.enabled is true")
	}

	if settings.Notify.MQTT.Enabled && settings.Notify.MQTT.Broker == "" {
		ve.Errors = append(ve.Errors, "notify.mqtt.broker must be set when notify.mqtt.enabled is true")
	}

	switch strings.ToLower(settings.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		ve.Errors = append(ve.Errors, fmt.Sprintf("logging.level %q must be one of debug, info, warn, error", settings.Logging.Level))
	}

	if len(ve.Errors) == 0 {
		return nil
	}
	return errors.New(ve).Category(errors.CategoryConfiguration).Build()
}
