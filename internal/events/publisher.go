// Package events publishes lobby and room lifecycle notices to a message bus
// so other services can follow what the session server is doing.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher delivers one notice per subject. Delivery is best effort.
type Publisher interface {
	Publish(subject string, payload any) error
	Close()
}

// NATSPublisher publishes JSON notices as core NATS messages under a fixed
// subject prefix.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	log    zerolog.Logger
}

// Connect dials the NATS server at url. The connection keeps reconnecting in
// the background for the lifetime of the publisher.
func Connect(url, prefix string, logger zerolog.Logger) (*NATSPublisher, error) {
	log := logger.With().Str("component", "events").Logger()

	conn, err := nats.Connect(
		url,
		nats.Name("dreamrelay"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}

	log.Info().Str("url", conn.ConnectedUrl()).Str("prefix", prefix).Msg("nats connected")
	return &NATSPublisher{conn: conn, prefix: prefix, log: log}, nil
}

func (p *NATSPublisher) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s notice: %w", subject, err)
	}
	full := Subject(p.prefix, subject)
	if err := p.conn.Publish(full, data); err != nil {
		return fmt.Errorf("publish %s: %w", full, err)
	}
	return nil
}

// Close flushes pending notices and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn().Err(err).Msg("nats drain failed")
		p.conn.Close()
	}
}

// Subject joins prefix and subject with a dot. An empty prefix leaves subject as is.
func Subject(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// Noop discards every notice. It is used when no bus is configured.
type Noop struct{}

func (Noop) Publish(string, any) error { return nil }

func (Noop) Close() {}
