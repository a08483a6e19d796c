package display

import (
	"fmt"
	"io"

	"github.com/harrison/paver/internal/coverage"
)

// uncoveredLimit bounds the uncovered file list in text output.
const uncoveredLimit = 20

// CoverageView is a coverage result plus the optional threshold check.
type CoverageView struct {
	coverage.Result
	Threshold    *float64 `json:"threshold,omitempty"`
	ThresholdMet *bool    `json:"threshold_met,omitempty"`
}

// NewCoverageView evaluates threshold (nil = none) against r.
func NewCoverageView(r coverage.Result, threshold *float64) CoverageView {
	v := CoverageView{Result: r, Threshold: threshold}
	if threshold != nil {
		met := r.ThresholdMet(*threshold)
		v.ThresholdMet = &met
	}
	return v
}

// RenderCoverage writes a coverage report.
func RenderCoverage(w io.Writer, v CoverageView, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, v)
	case FormatGitHub:
		for _, f := range v.Uncovered {
			annotation(w, "warning", f, 1, "No documentation covers this file")
		}
		if v.ThresholdMet != nil && !*v.ThresholdMet {
			annotation(w, "error", "", 0, fmt.Sprintf("Documentation coverage %.1f%% is below threshold %.0f%%", v.Percentage, *v.Threshold))
		}
		return nil
	}

	s := newStyles(w)
	fmt.Fprintln(w, s.bold.Sprint("Code Coverage Report"))
	fmt.Fprintln(w, "====================")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Covered: %s (%.1f%%)\n", plural(v.CoveredFiles, "file"), v.Percentage)
	fmt.Fprintf(w, "Uncovered: %s (%.1f%%)\n", plural(v.UncoveredFiles, "file"), 100-v.Percentage)
	fmt.Fprintln(w)

	if len(v.ByDirectory) > 0 {
		fmt.Fprintln(w, "By Directory:")
		for _, d := range v.ByDirectory {
			fmt.Fprintf(w, "  %-30s %d/%d files (%.0f%%)\n", d.Path+"/", d.Covered, d.Total, d.Percentage)
		}
		fmt.Fprintln(w)
	}

	if len(v.Uncovered) > 0 {
		fmt.Fprintf(w, "Uncovered Files (%d):\n", len(v.Uncovered))
		for i, f := range v.Uncovered {
			if i == uncoveredLimit {
				fmt.Fprintf(w, "  ... and %d more\n", len(v.Uncovered)-uncoveredLimit)
				break
			}
			fmt.Fprintf(w, "  %s\n", f)
		}
		fmt.Fprintln(w)
	}

	if len(v.Suggestions) > 0 {
		fmt.Fprintln(w, "Suggested Actions:")
		for i, sug := range v.Suggestions {
			fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, sug.Description, plural(len(sug.Files), "file"))
		}
		fmt.Fprintln(w)
	}

	if v.ThresholdMet != nil {
		status := s.pass.Sprint("PASS")
		if !*v.ThresholdMet {
			status = s.fail.Sprint("FAIL")
		}
		fmt.Fprintf(w, "Threshold: %.0f%% (actual: %.1f%%) %s\n", *v.Threshold, v.Percentage, status)
	}
	return nil
}
