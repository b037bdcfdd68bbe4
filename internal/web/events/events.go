// Package events records application events (the audit trail shown to
// administrators) and optionally publishes them to NATS.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
)

// Event is something worth remembering that a user did.
type Event struct {
	Level       domain.EventLevel
	Message     string
	RelatedType string
	RelatedID   string
	ActorID     string
	At          time.Time
}

// Success builds a success level event about the relatedType record with
// relatedID, done by actor.
func Success(message, relatedType, relatedID string, actor *domain.User) Event {
	e := Event{
		Level:       domain.EventSuccess,
		Message:     message,
		RelatedType: relatedType,
		RelatedID:   relatedID,
	}
	if actor != nil {
		e.ActorID = actor.ID
	}
	return e
}

// Sink receives events.
type Sink interface {
	Record(ctx context.Context, e Event) error
}

// StoreSink persists events as AppEvents.
type StoreSink struct {
	Events store.AppEvents
}

func (s *StoreSink) Record(ctx context.Context, e Event) error {
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	err := s.Events.CreateAppEvent(ctx, domain.AppEvent{
		ID:          idx.NewAt(at).String(),
		Level:       e.Level,
		Message:     e.Message,
		RelatedType: e.RelatedType,
		RelatedID:   e.RelatedID,
		UserID:      e.ActorID,
		CreatedAt:   at,
	})
	if err != nil {
		return fmt.Errorf("store app event: %w", err)
	}
	return nil
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Record(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Counter is told about every recorded event.
type Counter interface {
	EventRecorded(level string)
}

// Counted wraps sink so each successfully recorded event is counted.
func Counted(sink Sink, c Counter) Sink {
	return countedSink{sink: sink, c: c}
}

type countedSink struct {
	sink Sink
	c    Counter
}

func (s countedSink) Record(ctx context.Context, e Event) error {
	if err := s.sink.Record(ctx, e); err != nil {
		return err
	}
	s.c.EventRecorded(string(e.Level))
	return nil
}

// Discard drops events.
type Discard struct{}

func (Discard) Record(context.Context, Event) error { return nil }
