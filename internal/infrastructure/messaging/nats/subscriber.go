package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// DefaultAlertSubject — wildcard-подписка на все события алертов
const DefaultAlertSubject = "alerts.events.>"

// NATSAlertSubscriber implements the AlertSubscription port on NATS.
// Delivery is at-least-once: the downstream deduplicator handles
// redeliveries, this layer only decodes and forwards.
type NATSAlertSubscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	logger  *logger.Logger
}

// NewNATSAlertSubscriber creates a new NATS subscriber
func NewNATSAlertSubscriber(natsURL, subject string, log *logger.Logger) (*NATSAlertSubscriber, error) {
	log = log.WithComponent("nats-alerts")
	if subject == "" {
		subject = DefaultAlertSubject
	}

	// Connect to NATS with retry
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Connected to NATS", "url", natsURL, "subject", subject)

	return &NATSAlertSubscriber{
		nc:      nc,
		subject: subject,
		logger:  log,
	}, nil
}

// Subscribe starts delivering decoded alert events to the handler.
// Malformed payloads are logged and skipped, the subscription survives.
func (s *NATSAlertSubscriber) Subscribe(ctx context.Context, handler func(entity.AlertEvent)) error {
	if s.sub != nil {
		return fmt.Errorf("already subscribed to %s", s.subject)
	}

	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		var event entity.AlertEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			s.logger.Warn("Dropping malformed alert event",
				"subject", msg.Subject,
				"error", err.Error(),
			)
			return
		}
		if event.ID == "" {
			s.logger.Warn("Dropping alert event without id", "subject", msg.Subject)
			return
		}

		handler(event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}

	s.sub = sub
	s.logger.Info("Subscribed to alert events", "subject", s.subject)

	// Unsubscribe when the owning context ends
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	return nil
}

// Close drains the subscription and closes the NATS connection
func (s *NATSAlertSubscriber) Close() error {
	if s.sub != nil {
		if err := s.sub.Drain(); err != nil {
			s.logger.Warn("Failed to drain subscription", "error", err.Error())
		}
		s.sub = nil
	}
	if s.nc != nil && !s.nc.IsClosed() {
		s.logger.Info("Closing NATS connection")
		s.nc.Close()
	}
	return nil
}
