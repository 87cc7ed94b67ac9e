package mysession

import (
	"sort"
	"time"
)

type StoredSession struct {
	UID          string
	Values       []Value
	CreatedAt    time.Time
	LastModified time.Time
}

type Value struct {
	Key  string
	Data string `datastore:",noindex"`
}

func toStored(s *memorySession, now time.Time) StoredSession {
	values := make([]Value, 0, len(s.values))
	for k, v := range s.values {
		values = append(values, Value{Key: k, Data: v})
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Key < values[j].Key
	})

	createdAt := s.createdAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return StoredSession{
		UID:          s.uid,
		Values:       values,
		CreatedAt:    createdAt,
		LastModified: now,
	}
}

func fromStored(stored StoredSession) *memorySession {
	s := newMemorySession(stored.UID, stored.CreatedAt)
	for _, v := range stored.Values {
		s.values[v.Key] = v.Data
	}
	return s
}
