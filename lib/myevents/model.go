package myevents

import "time"

// EventEnvelope is the outbox record of one published event. Its UID is derived from its
// content, so publishing the same event twice results in a single record.
type EventEnvelope struct {
	UID           string
	CreatedAt     time.Time
	Topic         string
	AggregateUID  string
	EventTypeName string
	EventPayload  string `datastore:",noindex"`
	Published     bool
}

func (e EventEnvelope) String() string {
	return e.Topic + "." + e.EventTypeName + "." + e.AggregateUID
}

// Event is implemented by all domain events. For login events the aggregate is the session.
type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}
