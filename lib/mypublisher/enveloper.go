package mypublisher

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MarcGrol/insightsbackend/lib/myevents"
	"github.com/MarcGrol/insightsbackend/lib/mytime"
)

type enveloper struct {
	nower mytime.Nower
}

func newEnveloper(nower mytime.Nower) enveloper {
	return enveloper{
		nower: nower,
	}
}

// wrap packs event into an outbox envelope. The uid is derived from the content and the moment
// of occurrence: a retried publish of one occurrence maps onto the same outbox record and task
// name, while a later occurrence of an identical event (a second refresh) gets its own.
func (e enveloper) wrap(topic string, event myevents.Event) (myevents.EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling event %s: %s", event.GetEventTypeName(), err)
	}

	envelope := myevents.EventEnvelope{
		CreatedAt:     e.nower.Now(),
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
		Published:     false,
	}
	envelope.UID = envelopeUID(envelope)

	return envelope, nil
}

func envelopeUID(envelope myevents.EventEnvelope) string {
	sha2 := sha256.New()
	for _, part := range []string{
		envelope.Topic,
		envelope.AggregateUID,
		envelope.EventTypeName,
		envelope.CreatedAt.UTC().Format(time.RFC3339Nano),
		envelope.EventPayload,
	} {
		// length prefix keeps "ab"+"c" apart from "a"+"bc"
		fmt.Fprintf(sha2, "%d:%s;", len(part), part)
	}
	return base64.RawURLEncoding.EncodeToString(sha2.Sum(nil))
}
