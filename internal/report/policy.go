package report

import (
	"fmt"
	"time"

	"github.com/harrison/paver/internal/models"
)

// DateLayout is the format of a gradual-mode deadline.
const DateLayout = "2006-01-02"

// Mode selects how findings are accounted for.
type Mode struct {
	Strict  bool      // Warnings fail the run; always disables gradual
	Gradual bool      // Errors are downgraded to warnings
	Until   time.Time // Last day gradual applies (zero = no deadline)
}

// ParseDeadline parses a YYYY-MM-DD gradual deadline. An empty string means
// no deadline.
func ParseDeadline(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid gradual deadline %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// DeadlinePassed reports whether now is on a later calendar day than Until.
func (m Mode) DeadlinePassed(now time.Time) bool {
	if m.Until.IsZero() {
		return false
	}
	y, mo, d := now.Date()
	today := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	return today.After(m.Until)
}

// GradualActive reports whether gradual downgrading applies at now.
func (m Mode) GradualActive(now time.Time) bool {
	if m.Strict || !m.Gradual {
		return false
	}
	return !m.DeadlinePassed(now)
}

// Apply returns findings with every error downgraded to a warning and marked
// converted when gradual mode is active. The input is not modified.
func (m Mode) Apply(findings []models.Finding, now time.Time) []models.Finding {
	if !m.GradualActive(now) {
		return findings
	}
	out := make([]models.Finding, len(findings))
	for i, f := range findings {
		if f.Severity == models.SeverityError {
			f.Severity = models.SeverityWarning
			f.Converted = true
		}
		out[i] = f
	}
	return out
}
