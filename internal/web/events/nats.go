package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the msgpack body published for each event.
type Message struct {
	Level       string    `msgpack:"level"`
	Message     string    `msgpack:"message"`
	RelatedType string    `msgpack:"related_type,omitempty"`
	RelatedID   string    `msgpack:"related_id,omitempty"`
	ActorID     string    `msgpack:"actor_id,omitempty"`
	At          time.Time `msgpack:"at"`
}

// NATSSink publishes events to Subject.<level>.
type NATSSink struct {
	Conn    Publisher
	Subject string
}

func (s *NATSSink) Record(ctx context.Context, e Event) error {
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	body, err := msgpack.Marshal(Message{
		Level:       string(e.Level),
		Message:     e.Message,
		RelatedType: e.RelatedType,
		RelatedID:   e.RelatedID,
		ActorID:     e.ActorID,
		At:          at,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	subject := s.Subject + "." + string(e.Level)
	if err := s.Conn.Publish(subject, body); err != nil {
		return fmt.Errorf("publish event to %s: %w", subject, err)
	}
	slogx.FromContext(ctx).Debug("event published", slog.String("subject", subject))
	return nil
}

// Connect dials NATS with reconnects enabled, logging connection changes.
func Connect(url string, log *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("tenantry"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.ReconnectJitter(500*time.Millisecond, 2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", slog.Any("err", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Info("nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	log.Info("connected to nats", slog.String("url", nc.ConnectedUrl()))
	return nc, nil
}
