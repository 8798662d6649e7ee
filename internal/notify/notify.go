package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Notifier signals "this user's rows changed" so clients can re-fetch.
// Delivery is best-effort: consumers re-fetch the full table on any
// message, so a lost or duplicated signal is harmless.
type Notifier interface {
	Publish(userID, table string)
	Close()
}

// ChangeEvent is the payload published on a user's change topic.
type ChangeEvent struct {
	UserID    string    `json:"user_id"`
	Table     string    `json:"table"`
	Timestamp time.Time `json:"timestamp"`
}

// MQTTNotifier publishes change events to a per-user MQTT topic.
type MQTTNotifier struct {
	client mqtt.Client
}

// NewMQTTNotifier connects to the broker named by MQTT_BROKER. It returns
// an error when the broker is unreachable; callers usually fall back to
// NewNoopNotifier.
func NewMQTTNotifier() (*MQTTNotifier, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		return nil, fmt.Errorf("MQTT_BROKER not set")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("fueltrack-api").
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", token.Error())
	}

	return &MQTTNotifier{client: client}, nil
}

// Publish sends a change event for the given user and table. Fire and
// forget at QoS 0.
func (n *MQTTNotifier) Publish(userID, table string) {
	event := ChangeEvent{
		UserID:    userID,
		Table:     table,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("Failed to marshal change event")
		return
	}

	topic := Topic(userID)
	token := n.client.Publish(topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", topic).Warn("Failed to publish change event")
		}
	}()
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}

// Topic returns the change topic for a user.
func Topic(userID string) string {
	return fmt.Sprintf("fueltrack/users/%s/changes", userID)
}

// NoopNotifier drops all events. Used when no broker is configured.
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that does nothing.
func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

// Publish is a no-op.
func (n *NoopNotifier) Publish(userID, table string) {}

// Close is a no-op.
func (n *NoopNotifier) Close() {}
