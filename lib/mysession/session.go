package mysession

import (
	"time"
)

// Session is the per-browser key-value scope. Identity and lifetime are owned by the Manager.
type Session interface {
	UID() string
	Get(key string) (string, bool)
	Set(key string, value string)
	Delete(key string)
	ClearAll()
}

type memorySession struct {
	uid       string
	values    map[string]string
	createdAt time.Time
	dirty     bool
}

// NewMemorySession returns a session that lives only as long as the returned value.
func NewMemorySession(uid string) Session {
	return newMemorySession(uid, time.Time{})
}

func newMemorySession(uid string, createdAt time.Time) *memorySession {
	return &memorySession{
		uid:       uid,
		values:    map[string]string{},
		createdAt: createdAt,
	}
}

func (s *memorySession) UID() string {
	return s.uid
}

func (s *memorySession) Get(key string) (string, bool) {
	value, found := s.values[key]
	return value, found
}

func (s *memorySession) Set(key string, value string) {
	s.values[key] = value
	s.dirty = true
}

func (s *memorySession) Delete(key string) {
	if _, found := s.values[key]; !found {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

func (s *memorySession) ClearAll() {
	if len(s.values) == 0 {
		return
	}
	s.values = map[string]string{}
	s.dirty = true
}
