package models

import "fmt"

// Severity classifies a Finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single rule violation. Findings are values: once emitted by the
// rule engine they are never modified, only copied.
type Finding struct {
	Rule      string   `json:"rule"`
	Severity  Severity `json:"severity"`
	Line      int      `json:"line"` // Best effort, 1 when unknown
	Message   string   `json:"message"`
	Hint      string   `json:"hint,omitempty"`
	Converted bool     `json:"converted_from_error,omitempty"` // Set by the gradual policy
}

// String formats the finding as "line N: [severity] message".
func (f Finding) String() string {
	return fmt.Sprintf("line %d: [%s] %s", f.Line, f.Severity, f.Message)
}

// IsError reports whether the finding has error severity.
func (f Finding) IsError() bool {
	return f.Severity == SeverityError
}
