package myconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// FieldError names a single configuration field that is missing or malformed.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}
	return "invalid configuration: " + strings.Join(msgs, ", ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load fills target from an optional .env file and the environment, then validates it.
func Load(target any) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}

	err = env.Parse(target)
	if err != nil {
		return toErrors(err)
	}

	return Validate(target)
}

// Validate checks the `validate` tags of target.
func Validate(target any) error {
	err := validate.Struct(target)
	if err != nil {
		return toErrors(err)
	}
	return nil
}

func toErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		result := make(Errors, 0, len(validationErrors))
		for _, fe := range validationErrors {
			result = append(result, FieldError{
				Field:  fe.Field(),
				Reason: reason(fe),
			})
		}
		return result
	}

	var aggregate env.AggregateError
	if errors.As(err, &aggregate) {
		result := make(Errors, 0, len(aggregate.Errors))
		for _, e := range aggregate.Errors {
			result = append(result, envFieldError(e))
		}
		return result
	}

	return Errors{{Field: "env", Reason: err.Error()}}
}

func envFieldError(err error) FieldError {
	var parseErr env.ParseError
	if errors.As(err, &parseErr) {
		return FieldError{Field: parseErr.Name, Reason: parseErr.Err.Error()}
	}
	var notSetErr env.VarIsNotSetError
	if errors.As(err, &notSetErr) {
		return FieldError{Field: notSetErr.Key, Reason: "not set"}
	}
	var emptyErr env.EmptyVarError
	if errors.As(err, &emptyErr) {
		return FieldError{Field: emptyErr.Key, Reason: "empty"}
	}
	return FieldError{Field: "env", Reason: err.Error()}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing"
	case "url", "http_url":
		return "not a valid url"
	case "min":
		return fmt.Sprintf("needs at least %s value(s)", fe.Param())
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}
