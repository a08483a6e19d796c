package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Clean(t *testing.T) {
	project(t, map[string]string{"docs/widget.md": goodDoc})

	stdout, _, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Checked 1 document: all checks passed")
}

func TestCheck_ErrorsExitOne(t *testing.T) {
	project(t, map[string]string{
		"docs/widget.md": goodDoc,
		"docs/bare.md":   "just text\n",
	})

	stdout, _, err := execute(t, "check")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, stdout, "docs/bare.md:1: error: missing required section: Purpose")
	assert.Contains(t, stdout, "Checked 2 documents: 3 errors, 0 warnings")
}

func TestCheck_GradualPasses(t *testing.T) {
	project(t, map[string]string{"docs/bare.md": "just text\n"})

	stdout, _, err := execute(t, "check", "--gradual")
	require.NoError(t, err)
	assert.Contains(t, stdout, "warning: missing required section: Purpose")
	assert.Contains(t, stdout, "(gradual mode active)")
	assert.Contains(t, stdout, "3 issues would fail in strict mode")
}

func TestCheck_StrictAndGradualConflict(t *testing.T) {
	project(t, map[string]string{"docs/widget.md": goodDoc})
	_, _, err := execute(t, "check", "--strict", "--gradual")
	assert.ErrorContains(t, err, "cannot be used together")
}

func TestCheck_ExplicitPathAndJSON(t *testing.T) {
	project(t, map[string]string{
		"docs/widget.md": goodDoc,
		"other/bare.md":  "just text\n",
	})

	stdout, _, err := execute(t, "check", "--format", "json", "docs/widget.md")
	require.NoError(t, err)

	var decoded struct {
		DocumentsChecked int `json:"documents_checked"`
		Documents        []struct {
			Path string `json:"path"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, 1, decoded.DocumentsChecked)
	assert.Equal(t, "docs/widget.md", decoded.Documents[0].Path)
}

func TestCheck_GitHubFormat(t *testing.T) {
	project(t, map[string]string{"docs/bare.md": "just text\n"})

	stdout, _, err := execute(t, "check", "--format", "github")
	require.Error(t, err)
	assert.Contains(t, stdout, "::error file=docs/bare.md,line=1::missing required section: Purpose")
}

func TestCheck_UnknownFormat(t *testing.T) {
	project(t, map[string]string{"docs/widget.md": goodDoc})
	_, _, err := execute(t, "check", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}
