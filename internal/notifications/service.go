package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"toksmith/internal/config"
	"toksmith/internal/logging"
	"toksmith/internal/metrics"
)

// Event names a pipeline milestone.
type Event string

const (
	EventJobCompleted Event = "jobs.completed"
	EventJobFailed    Event = "jobs.failed"
	EventProjectStage Event = "projects.stage"
)

// Payload carries event fields. Keys are snake_case.
type Payload map[string]any

// Service publishes pipeline events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
	Close()
}

// Envelope is the message body written to NATS.
type Envelope struct {
	Event     Event     `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Data      Payload   `json:"data"`
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// NewService connects to NATS when a URL is configured. The connection
// reconnects forever so a broker restart never fails the daemon.
func NewService(cfg *config.Config, logger *slog.Logger) (Service, error) {
	if cfg == nil || strings.TrimSpace(cfg.NATS.URL) == "" {
		return noopService{}, nil
	}
	logger = logging.NewComponentLogger(logger, "notifications")

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name(cfg.NATS.ClientName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", logging.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats connection lost", logging.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	svc := newNATSService(nc, cfg.NATS.SubjectPrefix)
	svc.closer = nc.Close
	return svc, nil
}

func newNATSService(pub publisher, prefix string) *natsService {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "toksmith"
	}
	return &natsService{pub: pub, prefix: prefix}
}

type natsService struct {
	pub    publisher
	prefix string
	closer func()
}

// Subject returns the NATS subject an event is published on.
func Subject(prefix string, event Event) string {
	return prefix + "." + string(event)
}

func (n *natsService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || n.pub == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := Subject(n.prefix, event)
	if payload == nil {
		payload = Payload{}
	}
	body, err := json.Marshal(Envelope{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Source:    "toksmith",
		Data:      payload,
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if err := n.pub.Publish(subject, body); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(subject, metrics.OutcomeFailure).Inc()
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(subject, metrics.OutcomeSuccess).Inc()
	return nil
}

func (n *natsService) Close() {
	if n != nil && n.closer != nil {
		n.closer()
	}
}

// NewNoop returns a Service that discards every event.
func NewNoop() Service { return noopService{} }

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
func (noopService) Close()                                        {}
