package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/harrison/paver/internal/models"
)

// CommandRunner abstracts shell command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, spec models.CommandSpec) models.CommandResult
}

// ShellCommandRunner executes commands via the system shell.
type ShellCommandRunner struct {
	WorkDir     string
	Timeout     time.Duration
	OutputLimit int
	Shell       string
}

// NewShellCommandRunner creates a CommandRunner that executes real shell commands.
func NewShellCommandRunner(cfg Config) *ShellCommandRunner {
	return &ShellCommandRunner{
		WorkDir:     cfg.WorkingDir,
		Timeout:     cfg.Timeout,
		OutputLimit: cfg.outputLimit(),
		Shell:       cfg.shell(),
	}
}

// Run executes spec via "<shell> -c" under the runner's timeout. The process
// group is killed and reaped on every exit path; the returned result always
// describes what happened, failures included.
func (r *ShellCommandRunner) Run(ctx context.Context, spec models.CommandSpec) models.CommandResult {
	cmdCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, r.Shell, "-c", spec.Command)
	cmd.Dir = ResolveDir(r.WorkDir, spec.WorkingDir)
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	stdout := newCappedBuffer(r.OutputLimit)
	stderr := newCappedBuffer(r.OutputLimit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	configureProcessGroup(cmd)
	cmd.WaitDelay = killGrace

	start := time.Now()
	err := cmd.Run()
	killProcessGroup(cmd)

	result := models.CommandResult{
		Command:   spec.Command,
		Outcome:   models.OutcomePass,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.truncated || stderr.truncated,
		Duration:  time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.Outcome = models.OutcomeFail
		result.ExitCode = -1
		result.Error = "cancelled"
	case errors.Is(err, exec.ErrWaitDelay):
		// The shell exited on its own but a background child kept its output open.
		result.ExitCode = cmd.ProcessState.ExitCode()
		if result.ExitCode != 0 {
			result.Outcome = models.OutcomeFail
		}
	case errors.Is(cmdCtx.Err(), context.DeadlineExceeded):
		result.Outcome = models.OutcomeTimeout
		result.ExitCode = -1
		result.Error = "timed out after " + r.Timeout.String()
	case errors.As(err, &exitErr):
		result.Outcome = models.OutcomeFail
		result.ExitCode = exitErr.ExitCode()
	default:
		result.Outcome = models.OutcomeFail
		result.ExitCode = -1
		result.Error = err.Error()
	}
	return result
}

// ResolveDir applies a per-command directory override to base. Relative
// overrides are taken relative to base.
func ResolveDir(base, override string) string {
	switch {
	case override == "":
		return base
	case filepath.IsAbs(override) || base == "":
		return override
	default:
		return filepath.Join(base, override)
	}
}
