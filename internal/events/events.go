// Package events publishes roster-change notifications to Kafka.
package events

import "time"

// Event types carried in the event_type message header.
const (
	TypeSignup     = "roster.signup"
	TypeUnregister = "roster.unregister"
)

// RosterChanged is emitted whenever an activity roster is mutated.
type RosterChanged struct {
	EventID    string    `json:"event_id"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}
