package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning, in yellow when out is a terminal.
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	fmt.Fprint(out, newStyles(out).warn.Sprint(b.String()))
}

// WarnGradualDeadlinePassed reports that configured gradual mode expired.
func WarnGradualDeadlinePassed(deadline string) Warning {
	return Warning{
		Title:      fmt.Sprintf("gradual mode deadline (%s) has passed", deadline),
		Message:    "Running in strict mode: rule errors now fail the check.",
		Suggestion: "Fix the remaining errors or move rules.gradual_until in the paver config.",
	}
}

// WarnNoDocuments reports that discovery found nothing to process.
func WarnNoDocuments(paths []string) Warning {
	return Warning{
		Title: "no markdown files found",
		Files: paths,
	}
}

// WarnScanErrors lists non-fatal errors collected while discovering files.
func WarnScanErrors(errs []error) Warning {
	files := make([]string, 0, len(errs))
	for _, err := range errs {
		files = append(files, err.Error())
	}
	return Warning{
		Title: "some paths could not be scanned",
		Files: files,
	}
}
