// Package report folds per-document findings and verification outcomes into
// a single batch report and applies the caller-side pass/fail policies.
package report

import (
	"github.com/harrison/paver/internal/models"
)

// DocumentReport is everything known about one document after a run.
type DocumentReport struct {
	Path         string                       `json:"path"`
	Findings     []models.Finding             `json:"findings"`
	Verification *models.DocumentVerification `json:"verification,omitempty"`
}

// Totals are the batch-wide counters.
type Totals struct {
	DocumentsChecked  int `json:"documents_checked"`
	DocumentsVerified int `json:"documents_verified"` // Documents with at least one executed command
	Errors            int `json:"errors"`
	Warnings          int `json:"warnings"`
	WouldFail         int `json:"would_fail,omitempty"` // Errors downgraded by the gradual policy
	CommandsPassed    int `json:"commands_passed"`
	CommandsFailed    int `json:"commands_failed"`
	CommandsTimedOut  int `json:"commands_timed_out"`
	DocumentsSkipped  int `json:"documents_skipped,omitempty"` // Not started because the run was interrupted
}

// BatchReport is the aggregate of a batch, with per-document detail kept in
// input order.
type BatchReport struct {
	Totals
	Documents []DocumentReport `json:"documents"`
}

// Aggregate folds docs into a BatchReport. It performs no I/O.
func Aggregate(docs []DocumentReport) BatchReport {
	report := BatchReport{Documents: make([]DocumentReport, 0, len(docs))}
	for _, doc := range docs {
		report.Documents = append(report.Documents, doc)
		report.DocumentsChecked++

		for _, f := range doc.Findings {
			if f.IsError() {
				report.Errors++
			} else {
				report.Warnings++
			}
			if f.Converted {
				report.WouldFail++
			}
		}

		if doc.Verification == nil {
			continue
		}
		if doc.Verification.Skipped {
			report.DocumentsSkipped++
		}
		if len(doc.Verification.Commands) == 0 {
			continue
		}
		report.DocumentsVerified++
		for _, res := range doc.Verification.Commands {
			switch res.Outcome {
			case models.OutcomePass:
				report.CommandsPassed++
			case models.OutcomeTimeout:
				report.CommandsTimedOut++
			default:
				report.CommandsFailed++
			}
		}
	}
	return report
}

// CommandsRun is the number of command results in the batch.
func (t Totals) CommandsRun() int {
	return t.CommandsPassed + t.CommandsFailed + t.CommandsTimedOut
}

// Success reports whether the batch passes. Strict mode also fails on warnings.
func (t Totals) Success(strict bool) bool {
	if t.Errors > 0 || t.CommandsFailed > 0 || t.CommandsTimedOut > 0 {
		return false
	}
	return !strict || t.Warnings == 0
}

// ExitCode maps the batch outcome to a process exit status.
func (t Totals) ExitCode(strict bool) int {
	if t.Success(strict) {
		return 0
	}
	return 1
}

// FailedDocuments returns the documents whose verification did not pass.
func (b BatchReport) FailedDocuments() []DocumentReport {
	var out []DocumentReport
	for _, doc := range b.Documents {
		if doc.Verification != nil && doc.Verification.Status() != models.OutcomePass {
			out = append(out, doc)
		}
	}
	return out
}
