package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/parser"
)

// Logger receives progress messages from the runner. A nil Logger is silent.
type Logger interface {
	LogDebug(format string, args ...interface{})
	LogInfo(format string, args ...interface{})
	LogWarn(format string, args ...interface{})
}

// Runner executes verification commands one at a time, in document order.
type Runner struct {
	cfg      Config
	exec     CommandRunner
	logger   Logger
	progress func(models.DocumentVerification)
}

// NewRunner validates cfg and returns a Runner backed by the system shell.
func NewRunner(cfg Config, logger Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, exec: NewShellCommandRunner(cfg), logger: logger}, nil
}

// NewRunnerWith returns a Runner that delegates execution to exec.
func NewRunnerWith(cfg Config, exec CommandRunner, logger Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, exec: exec, logger: logger}, nil
}

// OnDocument registers fn to be called as each document of a
// VerifyDocuments batch finishes. fn may be called from several goroutines.
func (r *Runner) OnDocument(fn func(models.DocumentVerification)) {
	r.progress = fn
}

// Run executes plain command strings in the runner's working directory.
func (r *Runner) Run(ctx context.Context, commands []string) []models.CommandResult {
	specs := make([]models.CommandSpec, 0, len(commands))
	for _, c := range commands {
		specs = append(specs, models.CommandSpec{Command: c})
	}
	return r.RunSpecs(ctx, specs)
}

// RunSpecs executes specs sequentially. Results come back in input order.
// In fail-fast mode execution stops after the first failure or timeout and
// the remaining commands are left out of the result. Cancelling ctx stops
// execution before the next command starts.
func (r *Runner) RunSpecs(ctx context.Context, specs []models.CommandSpec) []models.CommandResult {
	if len(specs) == 0 {
		return nil
	}

	results := make([]models.CommandResult, 0, len(specs))
	for _, spec := range specs {
		if ctx.Err() != nil {
			r.logWarn("verification cancelled, %d command(s) not run", len(specs)-len(results))
			break
		}

		r.logDebug("running %q", spec.Command)
		result := r.exec.Run(ctx, spec)
		results = append(results, result)

		switch result.Outcome {
		case models.OutcomePass:
			r.logDebug("%q passed in %v", spec.Command, result.Duration.Round(time.Millisecond))
		case models.OutcomeTimeout:
			r.logWarn("%q timed out after %v", spec.Command, r.cfg.Timeout)
		default:
			r.logWarn("%q failed with exit code %d", spec.Command, result.ExitCode)
		}

		if result.Error == "cancelled" {
			break
		}
		if r.cfg.FailFast && !result.Passed() {
			break
		}
	}
	return results
}

// VerifyDocument extracts the document's verification commands and runs them.
// A document without commands verifies trivially with an empty command list.
// When ctx is already done the document is marked skipped instead.
func (r *Runner) VerifyDocument(ctx context.Context, doc *models.Document) models.DocumentVerification {
	v := models.DocumentVerification{Path: doc.Path}
	if sec, ok := doc.Section(parser.VerificationSection); ok {
		v.Line = sec.StartLine
	}

	specs := parser.ExtractCommandSpecs(doc)
	if len(specs) == 0 {
		return v
	}
	if ctx.Err() != nil {
		v.Skipped = true
		return v
	}
	r.logInfo("verifying %s (%d command(s))", doc.Path, len(specs))
	v.Commands = r.RunSpecs(ctx, specs)
	return v
}

// FormatResults renders command results as a short plain-text summary.
// Returns empty string if no results.
func FormatResults(results []models.CommandResult) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, res := range results {
		sb.WriteString(fmt.Sprintf("[%s] %s (%v)", strings.ToUpper(string(res.Outcome)), res.Command, res.Duration.Round(time.Millisecond)))
		if res.Outcome == models.OutcomeFail && res.ExitCode > 0 {
			sb.WriteString(fmt.Sprintf(" exit %d", res.ExitCode))
		}
		if res.Error != "" {
			sb.WriteString(": " + res.Error)
		}
		sb.WriteString("\n")
		if !res.Passed() {
			if out := strings.TrimSpace(res.Stderr); out != "" {
				sb.WriteString(indent(out))
			} else if out := strings.TrimSpace(res.Stdout); out != "" {
				sb.WriteString(indent(out))
			}
		}
	}
	return sb.String()
}

func indent(s string) string {
	var sb strings.Builder
	for _, line := range strings.Split(s, "\n") {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Runner) logDebug(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.LogDebug(format, args...)
	}
}

func (r *Runner) logInfo(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.LogInfo(format, args...)
	}
}

func (r *Runner) logWarn(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.LogWarn(format, args...)
	}
}
