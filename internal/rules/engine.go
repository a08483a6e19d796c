package rules

import (
	"fmt"

	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/parser"
)

// Rule checks one structural property of a document.
type Rule interface {
	// Name is a stable identifier such as "require-section-purpose".
	Name() string
	// Check returns the findings for doc, or nil if the rule holds.
	Check(doc *models.Document) []models.Finding
}

// Engine applies an ordered list of rules. The order is part of the output
// contract: findings are emitted rule by rule.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine applying rules in the given order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// FromRuleSet builds the fixed rule sequence for rs: Purpose, Verification,
// Examples (section, then code block), Length, then the optional
// verification-commands warning.
func FromRuleSet(rs RuleSet) *Engine {
	rules := []Rule{RequireSection{Section: "Purpose"}}
	if rs.RequireVerification {
		rules = append(rules, RequireSection{Section: "Verification"})
	}
	if rs.RequireExamples {
		rules = append(rules,
			RequireSection{Section: "Examples"},
			RequireCodeBlock{Section: "Examples"},
		)
	}
	rules = append(rules, MaxLines{Limit: rs.MaxLines})
	if rs.RequireVerificationCommands {
		rules = append(rules, RequireCommands{})
	}
	return NewEngine(rules...)
}

// Rules returns the rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Evaluate runs every rule against doc. Evaluation never stops early.
func (e *Engine) Evaluate(doc *models.Document) []models.Finding {
	var findings []models.Finding
	for _, rule := range e.rules {
		findings = append(findings, rule.Check(doc)...)
	}
	return findings
}

// Evaluate validates rs and evaluates doc against it.
func Evaluate(doc *models.Document, rs RuleSet) ([]models.Finding, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return FromRuleSet(rs).Evaluate(doc), nil
}

// RequireSection fails when no section with the given name exists.
type RequireSection struct {
	Section string
}

func (r RequireSection) Name() string {
	return "require-section-" + models.NormalizeSectionName(r.Section)
}

func (r RequireSection) Check(doc *models.Document) []models.Finding {
	if doc.HasSection(r.Section) {
		return nil
	}
	return []models.Finding{{
		Rule:     r.Name(),
		Severity: models.SeverityError,
		Line:     1,
		Message:  fmt.Sprintf("missing required section: %s", r.Section),
		Hint:     fmt.Sprintf("add a '## %s' section", r.Section),
	}}
}

// RequireCodeBlock fails when the named section exists but holds no fenced
// code block. A missing section is left to RequireSection.
type RequireCodeBlock struct {
	Section string
}

func (r RequireCodeBlock) Name() string {
	return "require-code-block-in-" + models.NormalizeSectionName(r.Section)
}

func (r RequireCodeBlock) Check(doc *models.Document) []models.Finding {
	section, ok := doc.Section(r.Section)
	if !ok || len(section.CodeBlocks) > 0 {
		return nil
	}
	return []models.Finding{{
		Rule:     r.Name(),
		Severity: models.SeverityError,
		Line:     section.StartLine,
		Message:  fmt.Sprintf("section '%s' must contain at least one code block", r.Section),
		Hint:     fmt.Sprintf("add a fenced code block with an example to the '%s' section", r.Section),
	}}
}

// MaxLines fails when the document is longer than Limit lines.
type MaxLines struct {
	Limit int
}

func (r MaxLines) Name() string {
	return fmt.Sprintf("max-lines-%d", r.Limit)
}

func (r MaxLines) Check(doc *models.Document) []models.Finding {
	count := doc.LineCount()
	if count <= r.Limit {
		return nil
	}
	return []models.Finding{{
		Rule:     r.Name(),
		Severity: models.SeverityError,
		Line:     r.Limit + 1,
		Message:  fmt.Sprintf("document has %d lines, exceeds maximum of %d", count, r.Limit),
		Hint:     "split this document into smaller, focused documents",
	}}
}

// RequireCommands warns when a Verification section exists but contains no
// block the extractor would run.
type RequireCommands struct{}

func (RequireCommands) Name() string {
	return "require-command-in-verification"
}

func (r RequireCommands) Check(doc *models.Document) []models.Finding {
	section, ok := doc.Section(parser.VerificationSection)
	if !ok || len(parser.ExtractCommands(doc)) > 0 {
		return nil
	}
	return []models.Finding{{
		Rule:     r.Name(),
		Severity: models.SeverityWarning,
		Line:     section.StartLine,
		Message:  "section 'Verification' has no runnable command",
		Hint:     "add a ```bash block with the commands that prove this document",
	}}
}
