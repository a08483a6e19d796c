package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Format selects an output rendering.
type Format string

// Supported formats
const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatGitHub:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, json or github)", s)
	}
}

// IsTerminal reports whether w is a terminal that should receive colors.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// styles holds the colors used by text renderings. Colors are forced on or
// off per writer rather than following the process-wide default.
type styles struct {
	pass  *color.Color
	fail  *color.Color
	warn  *color.Color
	faint *color.Color
	bold  *color.Color
}

func newStyles(w io.Writer) styles {
	s := styles{
		pass:  color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		warn:  color.New(color.FgYellow),
		faint: color.New(color.FgHiBlack),
		bold:  color.New(color.Bold),
	}
	enabled := IsTerminal(w)
	for _, c := range []*color.Color{s.pass, s.fail, s.warn, s.faint, s.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// MarshalReport is the JSON form written by --report.
func MarshalReport(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return append(data, '\n'), nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// escapeAnnotation escapes a GitHub workflow command message.
func escapeAnnotation(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return r.Replace(s)
}

// escapeProperty escapes a GitHub workflow command property value.
func escapeProperty(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
	return r.Replace(s)
}

func annotation(w io.Writer, level, file string, line int, message string) {
	if file == "" {
		fmt.Fprintf(w, "::%s::%s\n", level, escapeAnnotation(message))
		return
	}
	fmt.Fprintf(w, "::%s file=%s,line=%d::%s\n", level, escapeProperty(file), line, escapeAnnotation(message))
}
