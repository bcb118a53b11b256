package notify

import (
	"fmt"

	"github.com/nicholas-fedor/shoutrrr"

	"github.com/scsess/scsess/internal/conf"
)

// webhookPusher fans a message out to every configured shoutrrr URL
// (Slack, Discord, generic webhook, ...), the way the teacher's push
// notification dispatcher hands messages to shoutrrr providers.
type webhookPusher struct {
	urls []string
}

func newWebhookPusher(settings conf.Settings) *webhookPusher {
	return &webhookPusher{urls: settings.Notify.Webhook.URLs}
}

// Push sends message to every configured URL, collecting (not
// short-circuiting on) per-URL failures so one bad endpoint doesn't
// suppress delivery to the rest.
func (p *webhookPusher) Push(message string) error {
	var firstErr error
	for _, url := range p.urls {
		if err := shoutrrr.Send(url, message); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("webhook %s: %w", url, err)
			}
			continue
		}
	}
	return firstErr
}
