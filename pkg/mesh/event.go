package mesh

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payload is the tagged variant an Event carries: a host either connected or
// disconnected. Each variant holds the full host snapshot at the time of the
// event. The interface is sealed so consumers can match it exhaustively.
type Payload interface {
	// Kind returns the wire tag of the variant ("connect" or "disconnect").
	Kind() string

	sealed()
}

// Connect records that a host registered itself with the coordinator.
type Connect struct {
	Host Host `json:"host"`
}

// Disconnect records that a host was removed from the registry.
type Disconnect struct {
	Host Host `json:"host"`
}

func (Connect) Kind() string    { return "connect" }
func (Disconnect) Kind() string { return "disconnect" }

func (Connect) sealed()    {}
func (Disconnect) sealed() {}

// Event is one immutable entry in the coordinator's event log. IDs are
// UUIDv7: time-ordered and globally unique, so events sort by creation even
// when CreatedAt timestamps collide.
type Event struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Payload   Payload
}

// NewConnect creates a Connect event for the given host snapshot.
func NewConnect(host Host, now time.Time) (Event, error) {
	return newEvent(Connect{Host: host}, now)
}

// NewDisconnect creates a Disconnect event for the given host snapshot.
func NewDisconnect(host Host, now time.Time) (Event, error) {
	return newEvent(Disconnect{Host: host}, now)
}

func newEvent(payload Payload, now time.Time) (Event, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}
	return Event{ID: id, CreatedAt: now, Payload: payload}, nil
}

type eventDoc struct {
	ID        uuid.UUID       `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the event with an explicit variant tag.
func (e Event) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventDoc{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Kind:      e.Payload.Kind(),
		Payload:   payload,
	})
}

// UnmarshalJSON decodes an event, dispatching on the variant tag.
func (e *Event) UnmarshalJSON(data []byte) error {
	var doc eventDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	e.ID = doc.ID
	e.CreatedAt = doc.CreatedAt
	switch doc.Kind {
	case "connect":
		var p Connect
		if err := json.Unmarshal(doc.Payload, &p); err != nil {
			return err
		}
		e.Payload = p
	case "disconnect":
		var p Disconnect
		if err := json.Unmarshal(doc.Payload, &p); err != nil {
			return err
		}
		e.Payload = p
	default:
		return fmt.Errorf("unknown event kind %q", doc.Kind)
	}
	return nil
}
