package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/report"
)

// RenderVerify writes the outcome of a verify run. Documents without
// commands are left out of text and annotation output; skipped documents
// are listed.
func RenderVerify(w io.Writer, r report.BatchReport, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatGitHub:
		renderVerifyGitHub(w, r)
		return nil
	default:
		renderVerifyText(w, r)
		return nil
	}
}

func outcomeLabel(s styles, o models.Outcome) string {
	label := strings.ToUpper(string(o))
	switch o {
	case models.OutcomePass:
		return s.pass.Sprint(label)
	case models.OutcomeTimeout:
		return s.warn.Sprint(label)
	default:
		return s.fail.Sprint(label)
	}
}

func renderVerifyText(w io.Writer, r report.BatchReport) {
	s := newStyles(w)
	for _, doc := range r.Documents {
		v := doc.Verification
		if v != nil && v.Skipped {
			fmt.Fprintf(w, "%s:%d\n  [%s] not run: verification interrupted\n\n", doc.Path, v.Line, s.warn.Sprint("SKIPPED"))
			continue
		}
		if v == nil || len(v.Commands) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:%d\n", doc.Path, v.Line)
		for _, res := range v.Commands {
			fmt.Fprintf(w, "  [%s] (%.2fs) %s\n", outcomeLabel(s, res.Outcome), res.Duration.Seconds(), res.Command)
			if res.Passed() {
				continue
			}
			if res.Outcome == models.OutcomeFail && res.ExitCode >= 0 {
				fmt.Fprintf(w, "    exit code: %d\n", res.ExitCode)
			}
			if res.Error != "" {
				fmt.Fprintf(w, "    error: %s\n", res.Error)
			}
			writeStream(w, "stdout", res.Stdout)
			writeStream(w, "stderr", res.Stderr)
			if res.Truncated {
				fmt.Fprintln(w, s.faint.Sprint("    (output truncated)"))
			}
			fmt.Fprintln(w, "    suggestion: Try running manually:")
			fmt.Fprintf(w, "      %s\n", res.Command)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Verified %s: ", plural(r.DocumentsVerified, "document"))
	switch {
	case r.CommandsFailed == 0 && r.CommandsTimedOut == 0:
		fmt.Fprintln(w, s.pass.Sprintf("%s passed", plural(r.CommandsPassed, "command")))
	default:
		fmt.Fprintf(w, "%d passed, %s, %d timed out\n", r.CommandsPassed, s.fail.Sprintf("%d failed", r.CommandsFailed), r.CommandsTimedOut)
	}
	if r.DocumentsSkipped > 0 {
		fmt.Fprintln(w, s.warn.Sprintf("Skipped %s after interruption", plural(r.DocumentsSkipped, "document")))
	}
}

func writeStream(w io.Writer, name, content string) {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return
	}
	fmt.Fprintf(w, "    %s:\n", name)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(w, "      %s\n", line)
	}
}

func renderVerifyGitHub(w io.Writer, r report.BatchReport) {
	for _, doc := range r.Documents {
		v := doc.Verification
		if v == nil {
			continue
		}
		if v.Skipped {
			annotation(w, "warning", doc.Path, v.Line, "Verification skipped: run was interrupted")
			continue
		}
		for _, res := range v.Commands {
			switch res.Outcome {
			case models.OutcomeFail:
				annotation(w, "error", doc.Path, v.Line, fmt.Sprintf("Command failed: %s (exit code: %d)", res.Command, res.ExitCode))
			case models.OutcomeTimeout:
				annotation(w, "error", doc.Path, v.Line, fmt.Sprintf("Command timed out: %s", res.Command))
			}
		}
	}
}
