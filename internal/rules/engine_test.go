package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/parser"
)

const scenarioDoc = "# T\n\n## Purpose\nx\n\n## Verification\n```bash\n$ true\n```\n\n## Examples\n```bash\necho hi\n```\n"

func ruleNames(findings []models.Finding) []string {
	names := make([]string, 0, len(findings))
	for _, f := range findings {
		names = append(names, f.Rule)
	}
	return names
}

func TestEvaluate_Scenario(t *testing.T) {
	doc := parser.ParseString("t.md", scenarioDoc)

	findings, err := Evaluate(doc, DefaultRuleSet())
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Equal(t, []string{"true"}, parser.ExtractCommands(doc))
}

func TestEvaluate_NoSections(t *testing.T) {
	doc := parser.ParseString("plain.md", "nothing here\n")
	require.Empty(t, doc.Sections)

	findings, err := Evaluate(doc, DefaultRuleSet())
	require.NoError(t, err)
	require.Len(t, findings, 3)

	purpose := findings[0]
	assert.Equal(t, "require-section-purpose", purpose.Rule)
	assert.Equal(t, models.SeverityError, purpose.Severity)
	assert.Equal(t, 1, purpose.Line)
	assert.Equal(t, "missing required section: Purpose", purpose.Message)
	assert.Equal(t, "add a '## Purpose' section", purpose.Hint)
}

func TestEvaluate_VerificationNotRequired(t *testing.T) {
	rs := DefaultRuleSet()
	rs.RequireVerification = false

	for _, text := range []string{"nothing\n", "## Purpose\nx\n", "## Examples\ntext only\n"} {
		findings, err := Evaluate(parser.ParseString("a.md", text), rs)
		require.NoError(t, err)
		for _, f := range findings {
			assert.NotContains(t, strings.ToLower(f.Message), "verification", text)
		}
	}
}

func TestEvaluate_ExamplesNeedCodeBlock(t *testing.T) {
	doc := parser.ParseString("a.md", "## Purpose\nx\n## Verification\n## Examples\nJust prose.\n")
	findings, err := Evaluate(doc, DefaultRuleSet())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "require-code-block-in-examples", findings[0].Rule)
	assert.Equal(t, 4, findings[0].Line)

	rs := DefaultRuleSet()
	rs.RequireExamples = false
	findings, err = Evaluate(doc, rs)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestEvaluate_MaxLinesBoundary(t *testing.T) {
	base := parser.ParseString("t.md", scenarioDoc).LineCount()
	rs := DefaultRuleSet()
	rs.MaxLines = base + 5

	withLines := func(n int) *models.Document {
		return parser.ParseString("t.md", scenarioDoc+strings.Repeat("filler\n", n-base))
	}

	atLimit := withLines(rs.MaxLines)
	require.Equal(t, rs.MaxLines, atLimit.LineCount())
	findings, err := Evaluate(atLimit, rs)
	require.NoError(t, err)
	assert.Empty(t, findings)

	over := withLines(rs.MaxLines + 1)
	findings, err = Evaluate(over, rs)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, rs.MaxLines+1, findings[0].Line)
	assert.Contains(t, findings[0].Message, "exceeds maximum")
}

func TestEvaluate_Order(t *testing.T) {
	rs := DefaultRuleSet()
	rs.MaxLines = 1
	doc := parser.ParseString("a.md", "## Examples\nprose\n")

	findings, err := Evaluate(doc, rs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"require-section-purpose",
		"require-section-verification",
		"require-code-block-in-examples",
		"max-lines-1",
	}, ruleNames(findings))
}

func TestEvaluate_VerificationCommandsWarning(t *testing.T) {
	rs := DefaultRuleSet()
	rs.RequireVerificationCommands = true

	doc := parser.ParseString("a.md", "## Purpose\nx\n## Verification\n```python\nprint(1)\n```\n## Examples\n```go\nx()\n```\n")
	findings, err := Evaluate(doc, rs)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityWarning, findings[0].Severity)
	assert.Equal(t, 3, findings[0].Line)

	findings, err = Evaluate(parser.ParseString("t.md", scenarioDoc), rs)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRuleSet_Validate(t *testing.T) {
	assert.NoError(t, DefaultRuleSet().Validate())

	for _, maxLines := range []int{0, -5} {
		rs := DefaultRuleSet()
		rs.MaxLines = maxLines
		err := rs.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))

		_, err = Evaluate(parser.ParseString("a.md", ""), rs)
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	}
}

func TestEngine_CustomRules(t *testing.T) {
	e := NewEngine(RequireSection{Section: "Decisions"})
	require.Len(t, e.Rules(), 1)

	findings := e.Evaluate(parser.ParseString("a.md", "## Purpose\n"))
	require.Len(t, findings, 1)
	assert.Equal(t, "missing required section: Decisions", findings[0].Message)
}

func TestFromRuleSet_Toggles(t *testing.T) {
	assert.Len(t, FromRuleSet(DefaultRuleSet()).Rules(), 5)
	assert.Len(t, FromRuleSet(RuleSet{MaxLines: 1}).Rules(), 2)
	assert.Len(t, FromRuleSet(RuleSet{MaxLines: 1, RequireVerificationCommands: true}).Rules(), 3)
}
