package oautherrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigurationError reports missing or malformed static oauth configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func NewConfigurationError(field string, reason string) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: reason,
	}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("oauth configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) GetHTTPErrorCode() int {
	return http.StatusInternalServerError
}

// StateMismatchError reports a callback whose state does not match the pending login attempt.
type StateMismatchError struct {
	Reason string
}

func NewStateMismatchError(reason string) *StateMismatchError {
	return &StateMismatchError{
		Reason: reason,
	}
}

func (e *StateMismatchError) Error() string {
	return fmt.Sprintf("oauth state mismatch: %s", e.Reason)
}

func (e *StateMismatchError) GetHTTPErrorCode() int {
	return http.StatusForbidden
}

// TokenExchangeError reports a failed authorization-code exchange.
type TokenExchangeError struct {
	Code        string
	Description string
	Err         error
}

func (e *TokenExchangeError) Error() string {
	return "oauth token exchange failed: " + detail(e.Code, e.Description, e.Err)
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

func (e *TokenExchangeError) GetHTTPErrorCode() int {
	return http.StatusUnauthorized
}

// RefreshError reports a failed refresh-token exchange.
type RefreshError struct {
	Code        string
	Description string
	Err         error
}

func (e *RefreshError) Error() string {
	return "oauth token refresh failed: " + detail(e.Code, e.Description, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

func (e *RefreshError) GetHTTPErrorCode() int {
	return http.StatusUnauthorized
}

func detail(code string, description string, err error) string {
	switch {
	case code != "" && description != "":
		return fmt.Sprintf("%s (%s)", code, description)
	case code != "":
		return code
	case err != nil:
		return err.Error()
	default:
		return "unknown error"
	}
}

const (
	KindConfiguration = "configuration"
	KindStateMismatch = "state_mismatch"
	KindTokenExchange = "token_exchange"
	KindRefresh       = "refresh"
	KindInternal      = "internal"
)

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	var configErr *ConfigurationError
	var mismatchErr *StateMismatchError
	var exchangeErr *TokenExchangeError
	var refreshErr *RefreshError

	switch {
	case errors.As(err, &configErr):
		return KindConfiguration
	case errors.As(err, &mismatchErr):
		return KindStateMismatch
	case errors.As(err, &exchangeErr):
		return KindTokenExchange
	case errors.As(err, &refreshErr):
		return KindRefresh
	default:
		return KindInternal
	}
}

// UserMessage returns a short message that is safe to show to the end user.
func UserMessage(err error) string {
	switch Kind(err) {
	case KindConfiguration:
		return "Login is not available: configuration missing."
	case KindStateMismatch:
		return "Login could not be verified, please log in again."
	case KindTokenExchange:
		var exchangeErr *TokenExchangeError
		if errors.As(err, &exchangeErr) && exchangeErr.Code == "access_denied" {
			return "Login was cancelled."
		}
		return "Login failed, please try again."
	case KindRefresh:
		return "Session expired, please log in again."
	default:
		return "Something went wrong, please try again."
	}
}
