package eventlogger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	MetadataChamaID = "chama_id"
	MetadataActorID = "actor_id"
)

type Event struct {
	ID        uuid.UUID         `json:"id,omitempty"`
	Type      string            `json:"event_type,omitempty"`
	Data      any               `json:"event_data,omitempty"`
	Metadata  map[string]string `json:"event_metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventOption func(*Event)

func WithType(eventType string) EventOption {
	return func(e *Event) {
		e.Type = eventType
	}
}

func WithData(data any) EventOption {
	return func(e *Event) {
		e.Data = data
	}
}

func WithMetadata(metadata map[string]string) EventOption {
	return func(e *Event) {
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	}
}

// WithChama tags the event with the chama it belongs to.
func WithChama(chamaID uuid.UUID) EventOption {
	return func(e *Event) {
		e.Metadata[MetadataChamaID] = chamaID.String()
	}
}

// WithActor tags the event with the user who issued the command. A nil id
// leaves the event untagged.
func WithActor(userID uuid.UUID) EventOption {
	return func(e *Event) {
		if userID == uuid.Nil {
			return
		}
		e.Metadata[MetadataActorID] = userID.String()
	}
}

func WithTime(t time.Time) EventOption {
	return func(e *Event) {
		e.CreatedAt = t
	}
}

func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Metadata:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

type EventLogger interface {
	Save(ctx context.Context, e Event) error
	GetByType(ctx context.Context, eventType string) ([]Event, error)
}
