package events

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig configures the MQTT event publisher.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// MQTTPublisher publishes lifecycle events to an MQTT broker on
// maintenance/{tenant}/requests/{action} and
// maintenance/{tenant}/schedules/{action}.
type MQTTPublisher struct {
	client mqtt.Client
	qos    byte
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{client: client, qos: cfg.QoS}, nil
}

// PublishRequestEvent publishes a request lifecycle event.
func (p *MQTTPublisher) PublishRequestEvent(_ context.Context, ev RequestEvent) error {
	topic := fmt.Sprintf("maintenance/%s/requests/%s", ev.TenantOrganizationID, ev.Action)
	return p.publish(topic, ev)
}

// PublishScheduleEvent publishes a schedule lifecycle event.
func (p *MQTTPublisher) PublishScheduleEvent(_ context.Context, ev ScheduleEvent) error {
	topic := fmt.Sprintf("maintenance/%s/schedules/%s", ev.TenantOrganizationID, ev.Action)
	return p.publish(topic, ev)
}

func (p *MQTTPublisher) publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	token := p.client.Publish(topic, p.qos, false, data)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}
	return nil
}

// Disconnect closes the broker connection.
func (p *MQTTPublisher) Disconnect() {
	p.client.Disconnect(250)
}

// IsConnected reports whether the broker connection is up.
func (p *MQTTPublisher) IsConnected() bool {
	return p.client.IsConnected()
}
