package notify

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/autogarden/thermctl/internal/climate"
)

// MQTTSink publishes controller events and state snapshots so other
// home-automation pieces can subscribe.
type MQTTSink struct {
	client      paho.Client
	eventTopic  string
	statusTopic string
}

// NewMQTTSink connects to the broker and returns a sink publishing under
// the given topic prefix (events on <prefix>/events, status on
// <prefix>/status).
func NewMQTTSink(broker, topicPrefix string) (*MQTTSink, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("thermctl").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &MQTTSink{
		client:      client,
		eventTopic:  topicPrefix + "/events",
		statusTopic: topicPrefix + "/status",
	}, nil
}

// Name implements Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// Send publishes an event at QoS 0, not retained.
func (s *MQTTSink) Send(e climate.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	token := s.client.Publish(s.eventTopic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishStatus publishes a retained state snapshot so late subscribers
// see the current state immediately.
func (s *MQTTSink) PublishStatus(snap climate.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	token := s.client.Publish(s.statusTopic, 0, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish status timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(1000)
	return nil
}
