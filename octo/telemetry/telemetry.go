//go:build !tinygo

// Package telemetry publishes tank snapshots to an MQTT broker.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"octopus/hal"
	"octopus/internal/config"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = time.Second
	disconnectMS   = 250
)

// Sample is one published snapshot.
type Sample struct {
	Time        time.Time `json:"time"`
	Level       uint8     `json:"level"`
	LevelValid  bool      `json:"level_valid"`
	DistanceCM  uint32    `json:"distance_cm"`
	Pump        bool      `json:"pump"`
	Valve       bool      `json:"valve"`
	PumpFailure bool      `json:"pump_failure"`
	FlowLPM     float64   `json:"flow_lpm"`
	TotalLiters float64   `json:"total_l"`
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher sends at most one sample per period.
type Publisher struct {
	c      publisher
	close  func()
	topic  string
	period time.Duration
	log    hal.Logger

	last time.Time
}

// Dial connects to cfg.Broker.
func Dial(cfg config.TelemetryConfig, log hal.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("telemetry: no broker")
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID(cfg.ClientID))
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("telemetry: connect %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("telemetry: connect %s: %w", cfg.Broker, err)
	}

	p := newPublisher(client, cfg, log)
	p.close = func() { client.Disconnect(disconnectMS) }
	return p, nil
}

// clientID returns id, or a random one when id is empty. Brokers drop the
// older session when two clients share an id.
func clientID(id string) string {
	if id != "" {
		return id
	}
	return "octopus-" + uuid.NewString()[:8]
}

func newPublisher(c publisher, cfg config.TelemetryConfig, log hal.Logger) *Publisher {
	return &Publisher{c: c, topic: cfg.Topic, period: cfg.Period, log: log}
}

// Publish sends s unless the previous sample went out less than a period
// before s.Time. It reports whether s was sent.
func (p *Publisher) Publish(s Sample) bool {
	if !p.last.IsZero() && s.Time.Sub(p.last) < p.period {
		return false
	}
	p.last = s.Time

	payload, err := json.Marshal(s)
	if err != nil {
		p.logf("telemetry: encode: %v", err)
		return false
	}
	token := p.c.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.logf("telemetry: publish %s: timeout", p.topic)
		return false
	}
	if err := token.Error(); err != nil {
		p.logf("telemetry: publish %s: %v", p.topic, err)
		return false
	}
	return true
}

func (p *Publisher) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}

func (p *Publisher) logf(format string, args ...any) {
	if p.log != nil {
		p.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}
