package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Timeout bounds the connect and publish round trips.
const Timeout = 5 * time.Second

// Message is a single publish to a broker.
type Message struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Topic    string
	Payload  string
	QoS      byte
	Retain   bool
	Username string
	Password string
}

// Publish connects to the broker, publishes m, and disconnects. Each
// call opens a fresh connection; shipit publishes at most once per run.
func Publish(m Message) error {
	if m.QoS > 2 {
		return fmt.Errorf("mqtt: invalid qos %d", m.QoS)
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(m.Broker).
		SetClientID(m.ClientID).
		SetConnectTimeout(Timeout).
		SetAutoReconnect(false)

	if m.Username != "" {
		opts.SetUsername(m.Username)
	}
	if m.Password != "" {
		opts.SetPassword(m.Password)
	}

	client := pahomqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(Timeout) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(m.Topic, m.QoS, m.Retain, m.Payload)
	if !pub.WaitTimeout(Timeout) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}
