// Package notify fans a finished compile out to an MQTT topic and/or a
// set of webhook URLs (SPEC_FULL.md's ambient notification stack,
// grounded on the teacher's internal/mqtt publish path and its
// shoutrrr-based push dispatcher).
package notify

import (
	"fmt"

	"github.com/scsess/scsess/internal/conf"
	"github.com/scsess/scsess/internal/events"
	"github.com/scsess/scsess/internal/logging"
)

var logger = logging.ForService("notify")

// Notifier implements events.CompileEventConsumer, publishing a short
// summary of every finished compile to whichever sinks are configured.
type Notifier struct {
	mqtt    *mqttPublisher
	webhook *webhookPusher
	mqttOn  bool
}

// New builds a Notifier from settings.Notify. Either sink may be
// disabled independently; a Notifier with nothing configured is valid
// and simply drops every event.
func New(settings conf.Settings) *Notifier {
	n := &Notifier{mqttOn: settings.Notify.MQTT.Enabled}
	if n.mqttOn {
		n.mqtt = newMQTTPublisher(settings)
	}
	if len(settings.Notify.Webhook.URLs) > 0 {
		n.webhook = newWebhookPusher(settings)
	}
	return n
}

// Name implements events.CompileEventConsumer.
func (n *Notifier) Name() string { return "notify" }

// ProcessCompileEvent implements events.CompileEventConsumer.
func (n *Notifier) ProcessCompileEvent(event events.CompileEvent) error {
	message := summarize(event)

	var errs []error
	if n.mqttOn && n.mqtt != nil {
		if err := n.mqtt.Publish(message); err != nil {
			logger.Warn("mqtt publish failed", "error", err)
			errs = append(errs, err)
		}
	}
	if n.webhook != nil {
		if err := n.webhook.Push(message); err != nil {
			logger.Warn("webhook push failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sink(s) failed, first: %w", len(errs), errs[0])
	}
	return nil
}

// Close releases any held connections (currently just the MQTT client).
func (n *Notifier) Close() {
	if n.mqtt != nil {
		n.mqtt.Close()
	}
}

func summarize(event events.CompileEvent) string {
	if event.GetOutcome() == events.CompileOutcomeFailure {
		return fmt.Sprintf("compile failed: %s (%s): %v", event.GetScorePath(), event.GetDuration(), event.GetError())
	}
	return fmt.Sprintf("compile succeeded: %s (%s, %d bundles)", event.GetScorePath(), event.GetDuration(), event.GetBundleCount())
}
