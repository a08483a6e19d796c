package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/paver/internal/report"
)

// colorScheme defines consistent colors for summary metrics.
// Green: passing counts
// Red: failure/error counts
// Yellow: warning/timeout counts
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
}

// newColorScheme creates the standard color scheme for metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
	}
}

// formatMetric formats "label: value". A nil scheme yields plain text; a
// non-nil valueColor is only applied when value is non-zero.
func formatMetric(label string, value int, scheme *colorScheme, valueColor func(*colorScheme) *color.Color) string {
	if scheme == nil {
		return fmt.Sprintf("%s: %d", label, value)
	}
	v := fmt.Sprintf("%d", value)
	if value > 0 && valueColor != nil {
		v = valueColor(scheme).Sprint(v)
	}
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), v)
}

func successColor(s *colorScheme) *color.Color { return s.success }
func failColor(s *colorScheme) *color.Color { return s.fail }
func warnColor(s *colorScheme) *color.Color { return s.warn }

// formatTotals renders batch totals. Command counters are omitted when no
// command ran.
func formatTotals(t report.Totals, scheme *colorScheme) string {
	parts := []string{
		formatMetric("documents", t.DocumentsChecked, scheme, nil),
		formatMetric("errors", t.Errors, scheme, failColor),
		formatMetric("warnings", t.Warnings, scheme, warnColor),
	}
	if t.CommandsRun() > 0 {
		parts = append(parts,
			formatMetric("verified", t.DocumentsVerified, scheme, nil),
			formatMetric("passed", t.CommandsPassed, scheme, successColor),
			formatMetric("failed", t.CommandsFailed, scheme, failColor),
			formatMetric("timed out", t.CommandsTimedOut, scheme, warnColor),
		)
	}
	return strings.Join(parts, ", ")
}
