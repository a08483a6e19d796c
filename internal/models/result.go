package models

import "time"

// Outcome is the result classification of a single verification command.
type Outcome string

// Command outcome constants
const (
	OutcomePass    Outcome = "pass"    // Exit status zero
	OutcomeFail    Outcome = "fail"    // Non-zero exit, spawn failure, or cancellation
	OutcomeTimeout Outcome = "timeout" // Killed after exceeding the per-command timeout
)

// CommandSpec is one executable command extracted from a verification block.
type CommandSpec struct {
	Command    string   `json:"command"`               // Block lines joined with " && "
	Line       int      `json:"line"`                  // Opening fence line of the source block
	WorkingDir string   `json:"working_dir,omitempty"` // Block or frontmatter override, empty = runner default
	Env        []string `json:"env,omitempty"`         // Extra KEY=VALUE entries
}

// CommandResult represents the result of running a single verification command.
type CommandResult struct {
	Command   string        `json:"command"`
	Outcome   Outcome       `json:"outcome"`
	ExitCode  int           `json:"exit_code"` // -1 when the process did not exit normally
	Stdout    string        `json:"stdout,omitempty"`
	Stderr    string        `json:"stderr,omitempty"`
	Truncated bool          `json:"truncated,omitempty"` // Output exceeded the capture limit
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"` // Spawn or cancellation detail
}

// Passed reports whether the command passed.
func (r CommandResult) Passed() bool {
	return r.Outcome == OutcomePass
}

// DocumentVerification is the ordered set of command results for one document.
type DocumentVerification struct {
	Path     string          `json:"path"`
	Line     int             `json:"line"` // Start line of the verification section, 0 if none
	Commands []CommandResult `json:"commands"`
	Skipped  bool            `json:"skipped,omitempty"` // Interrupted before any command started
}

// Status is pass iff every command result is pass. A document with no
// commands passes; a skipped document does not.
func (v DocumentVerification) Status() Outcome {
	if v.Skipped {
		return OutcomeFail
	}
	for _, r := range v.Commands {
		if r.Outcome != OutcomePass {
			return OutcomeFail
		}
	}
	return OutcomePass
}
