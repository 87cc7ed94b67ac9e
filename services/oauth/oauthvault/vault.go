package oauthvault

import (
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/insightsbackend/lib/mysession"
)

const (
	KeyCredentials = "credentials"
	KeyState       = "state"
	KeyFlash       = "flash"
)

// LoadCredential returns the stored credential. Undecodable or incomplete values count as absent.
func LoadCredential(s mysession.Session) (Credential, bool) {
	cred := Credential{}
	if !load(s, KeyCredentials, &cred) || !cred.IsComplete() {
		return Credential{}, false
	}
	return cred, true
}

func SaveCredential(s mysession.Session, cred Credential) error {
	return save(s, KeyCredentials, cred)
}

func ClearCredential(s mysession.Session) {
	s.Delete(KeyCredentials)
}

func LoadLoginAttempt(s mysession.Session) (LoginAttempt, bool) {
	attempt := LoginAttempt{}
	if !load(s, KeyState, &attempt) || attempt.State == "" {
		return LoginAttempt{}, false
	}
	return attempt, true
}

// SaveLoginAttempt replaces any previously pending attempt.
func SaveLoginAttempt(s mysession.Session, attempt LoginAttempt) error {
	return save(s, KeyState, attempt)
}

func ClearLoginAttempt(s mysession.Session) {
	s.Delete(KeyState)
}

// Flash is a one-shot error message shown on the next page render.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func PeekFlash(s mysession.Session) (Flash, bool) {
	flash := Flash{}
	if !load(s, KeyFlash, &flash) {
		return Flash{}, false
	}
	return flash, true
}

// PopFlash returns the pending flash and removes it.
func PopFlash(s mysession.Session) (Flash, bool) {
	flash, found := PeekFlash(s)
	if found {
		s.Delete(KeyFlash)
	}
	return flash, found
}

func SaveFlash(s mysession.Session, flash Flash) error {
	return save(s, KeyFlash, flash)
}

func load(s mysession.Session, key string, target any) bool {
	value, found := s.Get(key)
	if !found || value == "" {
		return false
	}
	return json.Unmarshal([]byte(value), target) == nil
}

func save(s mysession.Session, key string, value any) error {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshalling %s: %s", key, err)
	}
	s.Set(key, string(jsonBytes))
	return nil
}
