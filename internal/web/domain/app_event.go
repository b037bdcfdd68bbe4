package domain

import "time"

type EventLevel string

const (
	EventSuccess EventLevel = "success"
	EventInfo    EventLevel = "info"
	EventAlert   EventLevel = "alert"
)

// AppEvent is an audit record of something a user did.
type AppEvent struct {
	ID          string
	Level       EventLevel
	Message     string
	RelatedType string
	RelatedID   string
	UserID      string // actor, optional
	CreatedAt   time.Time
}
