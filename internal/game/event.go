package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown      EventType = iota
	EventTypeTick                   // Heartbeat with RNG seed, once per second
	EventTypeZoneChange             // Accepted zone change
	EventTypeZoneRejected           // Skip-ahead request ignored
	EventTypeInteraction            // Input routed to a puzzle
	EventTypeFragment               // Fragment collected
	EventTypeVictory                // Last fragment collected
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Name      string          `json:"name"`
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`
	TickNum   uint64          `json:"tickNum"`
	Source    string          `json:"source,omitempty"` // Client that caused it (for rate limiting)
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeZoneChange:
		return "zone_change"
	case EventTypeZoneRejected:
		return "zone_rejected"
	case EventTypeInteraction:
		return "interaction"
	case EventTypeFragment:
		return "fragment"
	case EventTypeVictory:
		return "victory"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// TickPayload is the periodic heartbeat
type TickPayload struct {
	RNGSeed   int64   `json:"rngSeed"`
	Zone      ZoneID  `json:"zone"`
	Elapsed   float64 `json:"elapsed"`
	Animating int     `json:"animating"`
}

// ZoneChangePayload describes an accepted or rejected zone change
type ZoneChangePayload struct {
	From ZoneID `json:"from"`
	To   ZoneID `json:"to"`
}

// InteractionPayload describes an input routed to a puzzle
type InteractionPayload struct {
	Zone    ZoneID          `json:"zone"`
	Kind    InteractionKind `json:"kind"`
	Entity  string          `json:"entity,omitempty"`
	Applied bool            `json:"applied"`
}

// FragmentPayload describes a collected fragment
type FragmentPayload struct {
	Zone      ZoneID `json:"zone"`
	Fragments int    `json:"fragments"`
	Total     int    `json:"total"`
}

// VictoryPayload marks the end of a run
type VictoryPayload struct {
	Ticks   uint64  `json:"ticks"`
	Elapsed float64 `json:"elapsed"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Name:      eventType.String(),
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
