package display

import (
	"fmt"
	"io"

	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/report"
)

// RenderCheck writes the findings of a check run.
func RenderCheck(w io.Writer, r report.BatchReport, gradual bool, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatGitHub:
		renderCheckGitHub(w, r, gradual)
		return nil
	default:
		renderCheckText(w, r, gradual)
		return nil
	}
}

func renderCheckText(w io.Writer, r report.BatchReport, gradual bool) {
	s := newStyles(w)
	for _, doc := range r.Documents {
		for _, f := range doc.Findings {
			sev := s.warn.Sprint(string(f.Severity))
			if f.IsError() {
				sev = s.fail.Sprint(string(f.Severity))
			}
			fmt.Fprintf(w, "%s:%d: %s: %s\n", doc.Path, f.Line, sev, f.Message)
			if f.Hint != "" {
				fmt.Fprintf(w, "  hint: %s\n", f.Hint)
			}
			if f.Converted {
				fmt.Fprintln(w, s.faint.Sprint("  note: This would be an error outside gradual mode"))
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "Checked %s: ", plural(r.DocumentsChecked, "document"))
	switch {
	case r.Errors == 0 && r.Warnings == 0:
		fmt.Fprintln(w, s.pass.Sprint("all checks passed"))
	case gradual:
		fmt.Fprintf(w, "%s, %s (gradual mode active)\n", plural(r.Errors, "error"), plural(r.Warnings, "warning"))
	default:
		fmt.Fprintf(w, "%s, %s\n", plural(r.Errors, "error"), plural(r.Warnings, "warning"))
	}

	if r.WouldFail > 0 {
		fmt.Fprintf(w, "Note: %s would fail in strict mode. Run 'paver check --strict' to see.\n", plural(r.WouldFail, "issue"))
	}
}

func renderCheckGitHub(w io.Writer, r report.BatchReport, gradual bool) {
	for _, doc := range r.Documents {
		for _, f := range doc.Findings {
			level := "warning"
			if f.Severity == models.SeverityError {
				level = "error"
			}
			msg := f.Message
			if f.Converted {
				msg += " (would be error outside gradual mode)"
			}
			annotation(w, level, doc.Path, f.Line, msg)
		}
	}
	if gradual && r.WouldFail > 0 {
		annotation(w, "notice", "", 0, fmt.Sprintf("Gradual mode active: %d issue(s) would fail in strict mode", r.WouldFail))
	}
}
