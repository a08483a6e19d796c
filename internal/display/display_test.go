package display

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/paver/internal/coverage"
	"github.com/harrison/paver/internal/history"
	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/report"
)

func checkReport() report.BatchReport {
	return report.Aggregate([]report.DocumentReport{
		{Path: "docs/clean.md"},
		{Path: "docs/api.md", Findings: []models.Finding{
			{Rule: "require-section", Severity: models.SeverityError, Line: 1, Message: "missing required section: Verification", Hint: "add a ## Verification section"},
			{Rule: "max-lines", Severity: models.SeverityWarning, Line: 301, Message: "document exceeds 300 lines"},
		}},
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" github ", FormatGitHub, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestRenderCheck_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCheck(&buf, checkReport(), false, FormatText))
	out := buf.String()

	assert.Contains(t, out, "docs/api.md:1: error: missing required section: Verification\n")
	assert.Contains(t, out, "  hint: add a ## Verification section\n")
	assert.Contains(t, out, "docs/api.md:301: warning: document exceeds 300 lines\n")
	assert.Contains(t, out, "Checked 2 documents: 1 error, 1 warning\n")
	assert.NotContains(t, out, "gradual")
}

func TestRenderCheck_TextAllPassed(t *testing.T) {
	var buf bytes.Buffer
	r := report.Aggregate([]report.DocumentReport{{Path: "a.md"}})
	require.NoError(t, RenderCheck(&buf, r, false, FormatText))
	assert.Equal(t, "Checked 1 document: all checks passed\n", buf.String())
}

func TestRenderCheck_TextGradual(t *testing.T) {
	mode := report.Mode{Gradual: true}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	findings := mode.Apply([]models.Finding{
		{Rule: "require-section", Severity: models.SeverityError, Line: 1, Message: "missing required section: Purpose"},
	}, now)
	r := report.Aggregate([]report.DocumentReport{{Path: "a.md", Findings: findings}})

	var buf bytes.Buffer
	require.NoError(t, RenderCheck(&buf, r, true, FormatText))
	out := buf.String()
	assert.Contains(t, out, "a.md:1: warning: missing required section: Purpose")
	assert.Contains(t, out, "  note: This would be an error outside gradual mode")
	assert.Contains(t, out, "0 errors, 1 warning (gradual mode active)")
	assert.Contains(t, out, "Note: 1 issue would fail in strict mode")
}

func TestRenderCheck_GitHub(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCheck(&buf, checkReport(), false, FormatGitHub))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "::error file=docs/api.md,line=1::missing required section: Verification", lines[0])
	assert.Equal(t, "::warning file=docs/api.md,line=301::document exceeds 300 lines", lines[1])
}

func TestRenderCheck_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCheck(&buf, checkReport(), false, FormatJSON))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "documents")
}

func TestAnnotationEscaping(t *testing.T) {
	var buf bytes.Buffer
	annotation(&buf, "error", "a,b:c.md", 3, "line one\nline two 100%")
	assert.Equal(t, "::error file=a%2Cb%3Ac.md,line=3::line one%0Aline two 100%25\n", buf.String())
}

func verifyReport() report.BatchReport {
	return report.Aggregate([]report.DocumentReport{
		{Path: "docs/empty.md", Verification: &models.DocumentVerification{Path: "docs/empty.md"}},
		{Path: "docs/build.md", Verification: &models.DocumentVerification{
			Path: "docs/build.md",
			Line: 12,
			Commands: []models.CommandResult{
				{Command: "echo hi", Outcome: models.OutcomePass, Stdout: "hi\n", Duration: 10 * time.Millisecond},
				{Command: "exit 3", Outcome: models.OutcomeFail, ExitCode: 3, Stderr: "boom\n", Duration: 1500 * time.Millisecond},
				{Command: "sleep 10", Outcome: models.OutcomeTimeout, ExitCode: -1, Duration: time.Second},
			},
		}},
	})
}

func TestRenderVerify_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderVerify(&buf, verifyReport(), FormatText))
	out := buf.String()

	assert.NotContains(t, out, "docs/empty.md")
	assert.Contains(t, out, "docs/build.md:12\n")
	assert.Contains(t, out, "  [PASS] (0.01s) echo hi\n")
	assert.Contains(t, out, "  [FAIL] (1.50s) exit 3\n")
	assert.Contains(t, out, "    exit code: 3\n")
	assert.Contains(t, out, "    stderr:\n      boom\n")
	assert.Contains(t, out, "  [TIMEOUT] (1.00s) sleep 10\n")
	assert.NotContains(t, out, "      hi\n", "passing command output is not shown")
	assert.Contains(t, out, "Verified 1 document: 1 passed, 1 failed, 1 timed out\n")
}

func TestRenderVerify_TextAllPassed(t *testing.T) {
	r := report.Aggregate([]report.DocumentReport{{Path: "a.md", Verification: &models.DocumentVerification{
		Path: "a.md", Line: 3, Commands: []models.CommandResult{{Command: "true", Outcome: models.OutcomePass}},
	}}})
	var buf bytes.Buffer
	require.NoError(t, RenderVerify(&buf, r, FormatText))
	assert.Contains(t, buf.String(), "Verified 1 document: 1 command passed\n")
}

func TestRenderVerify_Skipped(t *testing.T) {
	r := report.Aggregate([]report.DocumentReport{{Path: "docs/slow.md", Verification: &models.DocumentVerification{
		Path: "docs/slow.md", Line: 7, Skipped: true,
	}}})

	var text bytes.Buffer
	require.NoError(t, RenderVerify(&text, r, FormatText))
	assert.Contains(t, text.String(), "docs/slow.md:7\n  [SKIPPED] not run: verification interrupted\n")
	assert.Contains(t, text.String(), "Skipped 1 document after interruption\n")

	var gh bytes.Buffer
	require.NoError(t, RenderVerify(&gh, r, FormatGitHub))
	assert.Equal(t, "::warning file=docs/slow.md,line=7::Verification skipped: run was interrupted\n", gh.String())

	var js bytes.Buffer
	require.NoError(t, RenderVerify(&js, r, FormatJSON))
	assert.Contains(t, js.String(), `"skipped": true`)
	assert.Contains(t, js.String(), `"documents_skipped": 1`)
}

func TestRenderVerify_GitHub(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderVerify(&buf, verifyReport(), FormatGitHub))
	assert.Equal(t,
		"::error file=docs/build.md,line=12::Command failed: exit 3 (exit code: 3)\n"+
			"::error file=docs/build.md,line=12::Command timed out: sleep 10\n",
		buf.String())
}

func TestRenderCoverage_Text(t *testing.T) {
	res := coverage.Result{
		CoveredFiles:   1,
		UncoveredFiles: 1,
		TotalFiles:     2,
		Percentage:     50,
		ByDirectory:    []coverage.DirectoryCoverage{{Path: "src", Covered: 1, Total: 2, Percentage: 50}},
		Covered:        []string{"src/a.go"},
		Uncovered:      []string{"src/b.go"},
	}
	threshold := 80.0
	v := NewCoverageView(res, &threshold)
	require.NotNil(t, v.ThresholdMet)
	assert.False(t, *v.ThresholdMet)

	var buf bytes.Buffer
	require.NoError(t, RenderCoverage(&buf, v, FormatText))
	out := buf.String()
	assert.Contains(t, out, "Covered: 1 file (50.0%)")
	assert.Contains(t, out, "Uncovered Files (1):\n  src/b.go\n")
	assert.Contains(t, out, "Threshold: 80% (actual: 50.0%) FAIL")
}

func TestRenderCoverage_JSONWithoutThreshold(t *testing.T) {
	v := NewCoverageView(coverage.Result{TotalFiles: 0}, nil)
	var buf bytes.Buffer
	require.NoError(t, RenderCoverage(&buf, v, FormatJSON))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "coverage_percentage")
	assert.NotContains(t, decoded, "threshold_met")
}

func TestRenderHistory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderHistory(&buf, HistoryView{}, FormatText))
		assert.Contains(t, buf.String(), "No verification runs recorded")
	})

	t.Run("runs and flaky commands", func(t *testing.T) {
		v := HistoryView{
			Runs: []history.Run{
				{ID: "0123456789abcdef", StartedAt: time.Now(), CommandsPassed: 2, CommandsFailed: 1, Success: false},
			},
			Stats: []history.CommandStats{
				{Document: "a.md", Command: "make test", Runs: 3, Passed: 2, Failed: 1},
				{Document: "a.md", Command: "true", Runs: 3, Passed: 3},
			},
		}
		var buf bytes.Buffer
		require.NoError(t, RenderHistory(&buf, v, FormatText))
		out := buf.String()
		assert.Contains(t, out, "01234567")
		assert.Contains(t, out, "FAIL")
		assert.Contains(t, out, "2 passed, 1 failed, 0 timed out")
		assert.Contains(t, out, "a.md: make test (2/3 passed)")
		assert.NotContains(t, out, "a.md: true")
	})
}

func TestWarningDisplay(t *testing.T) {
	var buf bytes.Buffer
	Warning{
		Title:      "something odd",
		Message:    "details",
		Files:      []string{"a.md", "b.md"},
		Suggestion: "fix it",
	}.Display(&buf)
	out := buf.String()
	assert.Contains(t, out, "Warning: something odd\n")
	assert.Contains(t, out, "    details\n")
	assert.Contains(t, out, "Affected files:\n      1. a.md\n      2. b.md\n")
	assert.Contains(t, out, "    Suggestion:\n    fix it\n")
}

func TestWarningHelpers(t *testing.T) {
	assert.Contains(t, WarnGradualDeadlinePassed("2026-01-01").Title, "2026-01-01")
	assert.Equal(t, []string{"docs"}, WarnNoDocuments([]string{"docs"}).Files)
	assert.Equal(t, []string{"x: denied"}, WarnScanErrors([]error{errors.New("x: denied")}).Files)
}

func TestProgressIndicator_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressIndicator(&buf, 4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Step("docs/a.md", i%2 == 0)
		}(i)
	}
	wg.Wait()
	p.Complete()

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "a.md"))
	assert.Contains(t, out, "[4/4]")
	assert.Contains(t, out, "Verified 4 of 4 documents\n")
}

func TestMarshalReport(t *testing.T) {
	data, err := MarshalReport(verifyReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(data, []byte("\n")))
	assert.True(t, json.Valid(data))
}
