package oauthvault

import (
	"slices"
	"time"
)

const (
	// expiryDelta matches the early-expiry margin of golang.org/x/oauth2
	expiryDelta = 10 * time.Second
)

// Credential is the token set obtained for the current session.
type Credential struct {
	AccessToken   string    `json:"token"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	TokenEndpoint string    `json:"token_uri"`
	ClientID      string    `json:"client_id"`
	ClientSecret  string    `json:"client_secret"`
	Scopes        []string  `json:"scopes"`
	Expiry        time.Time `json:"expiry"`
}

// IsComplete reports whether all mandatory fields are present. Only the refresh token is optional.
func (c Credential) IsComplete() bool {
	return c.AccessToken != "" &&
		c.TokenEndpoint != "" &&
		c.ClientID != "" &&
		c.ClientSecret != "" &&
		len(c.Scopes) > 0
}

// IsValid reports whether the access token can still be used at now. A zero expiry never expires.
func (c Credential) IsValid(now time.Time) bool {
	if !c.IsComplete() {
		return false
	}
	if c.Expiry.IsZero() {
		return true
	}
	return now.Before(c.Expiry.Add(-expiryDelta))
}

func (c Credential) HasScopes(requested []string) bool {
	for _, scope := range requested {
		if !slices.Contains(c.Scopes, scope) {
			return false
		}
	}
	return true
}

// LoginAttempt correlates an outbound authorization request with its callback.
type LoginAttempt struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a LoginAttempt) IsStale(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(a.CreatedAt) > ttl
}
