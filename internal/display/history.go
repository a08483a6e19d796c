package display

import (
	"fmt"
	"io"
	"time"

	"github.com/harrison/paver/internal/history"
)

// HistoryView is the data shown by `paver history`.
type HistoryView struct {
	Runs  []history.Run          `json:"runs"`
	Stats []history.CommandStats `json:"commands,omitempty"`
}

// RenderHistory writes recorded verification runs. The github format falls
// back to text since history has nothing to annotate.
func RenderHistory(w io.Writer, v HistoryView, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, v)
	}

	s := newStyles(w)
	if len(v.Runs) == 0 {
		fmt.Fprintln(w, "No verification runs recorded. Use 'paver verify --record' to start.")
		return nil
	}

	for _, run := range v.Runs {
		status := s.pass.Sprint("PASS")
		if !run.Success {
			status = s.fail.Sprint("FAIL")
		}
		fmt.Fprintf(w, "%s  %s  %s  %d passed, %d failed, %d timed out  (%s)\n",
			run.StartedAt.Local().Format(time.DateTime), s.faint.Sprint(shortID(run.ID)), status,
			run.CommandsPassed, run.CommandsFailed, run.CommandsTimedOut,
			run.Duration.Round(time.Millisecond))
	}

	var flaky []history.CommandStats
	for _, st := range v.Stats {
		if st.Flaky() {
			flaky = append(flaky, st)
		}
	}
	if len(flaky) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.warn.Sprint("Flaky commands:"))
		for _, st := range flaky {
			fmt.Fprintf(w, "  %s: %s (%d/%d passed)\n", st.Document, st.Command, st.Passed, st.Runs)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
