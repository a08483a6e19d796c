// Package rules evaluates parsed documents against the structural rules of
// the PAVED convention (Purpose, API, Verification, Examples, Decisions).
package rules

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/harrison/paver/internal/models"
)

// DefaultMaxLines is the document length limit used when none is configured.
const DefaultMaxLines = 300

// RuleSet selects and parameterizes the rules applied to every document of a
// run. It is a plain value: callers build it once and pass it by value.
type RuleSet struct {
	MaxLines                    int  // Maximum document length in lines, must be > 0
	RequireVerification         bool // Require a Verification section
	RequireExamples             bool // Require an Examples section holding a code block
	RequireVerificationCommands bool // Warn when Verification has nothing to execute
}

// DefaultRuleSet returns the rule set of a freshly initialized project.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		MaxLines:            DefaultMaxLines,
		RequireVerification: true,
		RequireExamples:     true,
	}
}

// Validate rejects rule sets that cannot be evaluated.
func (rs RuleSet) Validate() error {
	err := validation.ValidateStruct(&rs,
		validation.Field(&rs.MaxLines, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("%w: rules: %v", models.ErrInvalidConfiguration, err)
	}
	return nil
}
