package notify

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/scsess/scsess/internal/conf"
)

// mqttPublisher publishes compile-result messages to a single MQTT
// topic, lazily connecting on first use and reconnecting the way the
// teacher's internal/mqtt client does.
type mqttPublisher struct {
	broker   string
	topic    string
	clientID string

	mu     sync.Mutex
	client paho.Client
}

func newMQTTPublisher(settings conf.Settings) *mqttPublisher {
	return &mqttPublisher{
		broker:   settings.Notify.MQTT.Broker,
		topic:    settings.Notify.MQTT.Topic,
		clientID: "scsess-notify",
	}
}

func (p *mqttPublisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil && p.client.IsConnected() {
		return nil
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(p.broker)
	opts.SetClientID(p.clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt: connection to %s timed out", p.broker)
	}
	return token.Error()
}

// Publish sends payload to the configured topic, connecting first if
// needed.
func (p *mqttPublisher) Publish(payload string) error {
	if err := p.connect(); err != nil {
		return fmt.Errorf("mqtt: connect: %w", err)
	}

	p.mu.Lock()
	client := p.client
	p.mu.Unlock()

	token := client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt: publish to %s timed out", p.topic)
	}
	return token.Error()
}

func (p *mqttPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
