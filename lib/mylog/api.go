package mylog

import "context"

type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// New is bound at init: structured Cloud Logging on Google Cloud, a zerolog console writer elsewhere.
var New func(component string) Logger

// Logger correlates entries on label, which is the session uid for user interactions.
// Tokens and client secrets must never be part of format or its arguments.
type Logger interface {
	Log(ctx context.Context, label string, severity Severity, format string, a ...any)
}
