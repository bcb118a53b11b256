// Package telemetry reports compiler failures to Sentry. It stays
// decoupled from internal/errors and internal/events by implementing
// their small reporter/consumer interfaces rather than those packages
// importing Sentry directly (SPEC_FULL.md's ambient observability
// stack, grounded on the teacher's errors/events/telemetry split).
package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/scsess/scsess/internal/conf"
	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/events"
	"github.com/scsess/scsess/internal/logging"
)

var logger = logging.ForService("telemetry")

// Reporter sends EnhancedErrors to Sentry. It implements both
// errors.TelemetryReporter (synchronous fallback) and
// events.EventConsumer (the event-bus path used once an EventBus is
// running).
type Reporter struct {
	enabled bool
}

// NewReporter returns a Reporter and, if settings.Telemetry.Enabled,
// initializes the Sentry SDK with the configured DSN.
func NewReporter(settings conf.Settings) (*Reporter, error) {
	if !settings.Telemetry.Enabled {
		return &Reporter{enabled: false}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Telemetry.DSN,
		AttachStacktrace: true,
	}); err != nil {
		return nil, errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry-init").
			Build()
	}

	logger.Info("telemetry reporting enabled")
	return &Reporter{enabled: true}, nil
}

// IsEnabled reports whether this Reporter should forward errors.
func (r *Reporter) IsEnabled() bool { return r.enabled }

// ReportError implements errors.TelemetryReporter.
func (r *Reporter) ReportError(ee *errors.EnhancedError) {
	if !r.enabled || ee.IsReported() {
		return
	}
	if !r.shouldReport(ee) {
		ee.MarkReported()
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.GetComponent())
		scope.SetTag("category", ee.GetCategory())
		for key, value := range ee.GetContext() {
			scope.SetContext(key, map[string]any{"value": value})
		}
		scope.SetLevel(levelFor(ee.GetCategory()))

		event := sentry.NewEvent()
		event.Message = ee.GetMessage()
		event.Level = levelFor(ee.GetCategory())
		event.Exception = []sentry.Exception{{
			Type:  titleFor(ee),
			Value: ee.GetMessage(),
		}}
		sentry.CaptureEvent(event)
	})

	ee.MarkReported()
}

// shouldReport filters categories that represent expected operator
// conditions (bad config, missing renderer) rather than compiler bugs.
func (r *Reporter) shouldReport(ee *errors.EnhancedError) bool {
	switch ee.GetCategory() {
	case string(errors.CategoryConfiguration), string(errors.CategoryRendererNotFound):
		return false
	default:
		return true
	}
}

func levelFor(category string) sentry.Level {
	switch category {
	case string(errors.CategoryStateStructureViolation), string(errors.CategoryAllocatorExhausted):
		return sentry.LevelError
	case string(errors.CategoryUnboundedSession), string(errors.CategoryInvalidDuration), string(errors.CategoryUnknownEntity):
		return sentry.LevelWarning
	default:
		return sentry.LevelError
	}
}

func titleFor(ee *errors.EnhancedError) string {
	parts := []string{titleCase(ee.GetComponent()), titleCase(strings.ReplaceAll(ee.GetCategory(), "-", " "))}
	return strings.Join(parts, " ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Name implements events.EventConsumer.
func (r *Reporter) Name() string { return "telemetry-sentry" }

// ProcessEvent implements events.EventConsumer.
func (r *Reporter) ProcessEvent(event events.ErrorEvent) error {
	ee, ok := event.(*errors.EnhancedError)
	if !ok {
		return fmt.Errorf("telemetry: unexpected event type %T", event)
	}
	r.ReportError(ee)
	return nil
}

// ProcessBatch implements events.EventConsumer.
func (r *Reporter) ProcessBatch(batch []events.ErrorEvent) error {
	for _, event := range batch {
		if err := r.ProcessEvent(event); err != nil {
			return err
		}
	}
	return nil
}

// SupportsBatching implements events.EventConsumer.
func (r *Reporter) SupportsBatching() bool { return true }

// Flush blocks up to timeout for Sentry to drain its queue, used during
// shutdown so a final error isn't lost.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
