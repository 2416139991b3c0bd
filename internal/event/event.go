package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/undocalc/internal/event/topic"
)

// Event is an immutable message published on the bus.
type Event[T any] struct {
	// Type is the hierarchical event type, e.g. "history.undone".
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	// ID uniquely identifies this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source names the component that published the event.
	Source string
}

// NewEvent creates an event with a fresh ID and the current time.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// TopicProvider is implemented by anything the bus can route.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// Calculator topics.
const (
	TopicAccumulatorChanged topic.Topic = "accumulator.changed"
	TopicHistoryComputed    topic.Topic = "history.computed"
	TopicHistoryUndone      topic.Topic = "history.undone"
	TopicHistoryRedone      topic.Topic = "history.redone"
	TopicHistoryCleared     topic.Topic = "history.cleared"
)

// ValueChanged is the payload of TopicAccumulatorChanged.
type ValueChanged struct {
	Value   int64
	Op      string
	Operand int64
}

// HistoryMoved is the payload of the history topics.
type HistoryMoved struct {
	// Requested is the number of levels asked for; Steps is how many ran.
	Requested int
	Steps     int

	Cursor int
	Len    int
	Value  int64
}
