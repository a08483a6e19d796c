package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coverageProject(t *testing.T) {
	t.Helper()
	project(t, map[string]string{
		"docs/widget.md": goodDoc + "\n## Paths\n- src/widget/\n",
		"src/widget/a.go": "package widget\n",
		"src/widget/b.go": "package widget\n",
		"src/gadget/c.go": "package gadget\n",
		"src/gadget/d.go": "package gadget\n",
	})
}

func TestCoverage_JSON(t *testing.T) {
	coverageProject(t)

	stdout, _, err := execute(t, "coverage", "--format", "json")
	require.NoError(t, err)

	var decoded struct {
		Covered    int      `json:"covered_files"`
		Total      int      `json:"total_files"`
		Percentage float64  `json:"coverage_percentage"`
		Uncovered  []string `json:"uncovered"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, 2, decoded.Covered)
	assert.Equal(t, 4, decoded.Total)
	assert.InDelta(t, 50.0, decoded.Percentage, 0.01)
	assert.Equal(t, []string{"src/gadget/c.go", "src/gadget/d.go"}, decoded.Uncovered)
}

func TestCoverage_Threshold(t *testing.T) {
	coverageProject(t)

	_, _, err := execute(t, "coverage", "--threshold", "40")
	require.NoError(t, err)

	stdout, _, err := execute(t, "coverage", "--threshold", "80")
	assert.ErrorContains(t, err, "below threshold 80%")
	assert.Contains(t, stdout, "Threshold: 80% (actual: 50.0%) FAIL")
}

func TestCoverage_Exclude(t *testing.T) {
	coverageProject(t)

	stdout, _, err := execute(t, "coverage", "--format", "json", "--exclude", "src/gadget/**")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"coverage_percentage": 100`)
}
