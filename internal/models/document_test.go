package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return &Document{
		Path:  "a.md",
		Lines: []string{"# T", "## Purpose", "x", "y", "## Examples"},
		Sections: []Section{
			{Name: "purpose", Heading: "Purpose", StartLine: 2, EndLine: 4},
			{Name: "examples", Heading: "Examples", StartLine: 5, EndLine: 5},
		},
	}
}

func TestDocument_SectionLookupIgnoresCase(t *testing.T) {
	doc := sampleDocument()

	s, ok := doc.Section("PURPOSE")
	require.True(t, ok)
	assert.Equal(t, 2, s.StartLine)
	assert.True(t, doc.HasSection(" examples "))
	assert.False(t, doc.HasSection("verification"))
}

func TestDocument_Lines(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, 5, doc.LineCount())

	line, ok := doc.Line(1)
	assert.True(t, ok)
	assert.Equal(t, "# T", line)

	_, ok = doc.Line(0)
	assert.False(t, ok)
	_, ok = doc.Line(6)
	assert.False(t, ok)
}

func TestSection_Body(t *testing.T) {
	doc := sampleDocument()
	purpose, _ := doc.Section("purpose")
	assert.Equal(t, []string{"x", "y"}, purpose.Body(doc))

	examples, _ := doc.Section("examples")
	assert.Empty(t, examples.Body(doc), "heading on the last line has no body")
}

func TestFinding(t *testing.T) {
	f := Finding{Severity: SeverityError, Line: 3, Message: "missing required section: Purpose"}
	assert.True(t, f.IsError())
	assert.Equal(t, "line 3: [error] missing required section: Purpose", f.String())

	f.Severity = SeverityWarning
	assert.False(t, f.IsError())
}

func TestDocumentVerification_Status(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []Outcome
		want     Outcome
	}{
		{"no commands", nil, OutcomePass},
		{"all pass", []Outcome{OutcomePass, OutcomePass}, OutcomePass},
		{"one fail", []Outcome{OutcomePass, OutcomeFail}, OutcomeFail},
		{"timeout", []Outcome{OutcomeTimeout}, OutcomeFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DocumentVerification{}
			for _, o := range tt.outcomes {
				v.Commands = append(v.Commands, CommandResult{Outcome: o})
			}
			assert.Equal(t, tt.want, v.Status())
		})
	}
}

func TestDocumentVerification_SkippedIsNotPass(t *testing.T) {
	v := DocumentVerification{Path: "docs/cache.md", Skipped: true}
	assert.Equal(t, OutcomeFail, v.Status())
}

func TestCommandResult_Passed(t *testing.T) {
	assert.True(t, CommandResult{Outcome: OutcomePass}.Passed())
	assert.False(t, CommandResult{Outcome: OutcomeTimeout}.Passed())
}
