package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/paver/internal/filelock"
)

const failingDoc = "# Broken\n\n## Verification\n```bash\necho before\n```\n```bash\nexit 3\n```\n```bash\necho after\n```\n"

func TestVerify_Passing(t *testing.T) {
	project(t, map[string]string{"docs/widget.md": goodDoc})

	stdout, stderr, err := execute(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, stdout, "docs/widget.md:6")
	assert.Contains(t, stdout, "[PASS]")
	assert.Contains(t, stdout, "Verified 1 document: 1 command passed")
	assert.Contains(t, stderr, "Summary:")
}

func TestVerify_FailFastAndKeepGoing(t *testing.T) {
	project(t, map[string]string{"docs/broken.md": failingDoc})

	stdout, _, err := execute(t, "verify")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, stdout, "exit code: 3")
	assert.NotContains(t, stdout, "echo after")

	stdout, _, err = execute(t, "verify", "--keep-going")
	require.Error(t, err)
	assert.Contains(t, stdout, "echo after")
	assert.Contains(t, stdout, "2 passed, 1 failed, 0 timed out")
}

func TestVerify_Timeout(t *testing.T) {
	project(t, map[string]string{"docs/slow.md": "## Verification\n```sh\nsleep 5\n```\n"})

	stdout, _, err := execute(t, "verify", "--timeout", "200ms", "--format", "github")
	require.Error(t, err)
	assert.Contains(t, stdout, "::error file=docs/slow.md,line=1::Command timed out: sleep 5")
}

func TestVerify_InvalidTimeout(t *testing.T) {
	project(t, map[string]string{"docs/widget.md": goodDoc})
	_, _, err := execute(t, "verify", "--timeout", "soon")
	assert.ErrorContains(t, err, "invalid --timeout")
}

func TestVerify_WritesReport(t *testing.T) {
	dir := project(t, map[string]string{"docs/widget.md": goodDoc})
	reportPath := filepath.Join(dir, "out", "report.json")

	_, _, err := execute(t, "verify", "--report", reportPath)
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 1, decoded["commands_passed"])
}

func TestVerify_LockHeld(t *testing.T) {
	dir := project(t, map[string]string{"docs/widget.md": goodDoc})

	lock, err := filelock.TryAcquire(filepath.Join(dir, ".paver", "verify.lock"))
	require.NoError(t, err)
	defer lock.Unlock()

	_, _, err = execute(t, "verify")
	assert.ErrorIs(t, err, filelock.ErrHeld)
}

func TestVerify_RecordAndHistory(t *testing.T) {
	project(t, map[string]string{
		"docs/widget.md": goodDoc,
		"docs/broken.md": failingDoc,
	})

	stdout, _, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No verification runs recorded")

	_, _, err = execute(t, "verify", "--record", "docs/widget.md")
	require.NoError(t, err)
	_, _, err = execute(t, "verify", "--record")
	require.Error(t, err)

	stdout, _, err = execute(t, "history", "--format", "json", "--stats")
	require.NoError(t, err)
	var view struct {
		Runs []struct {
			Success bool `json:"success"`
		} `json:"runs"`
		Commands []struct {
			Command string `json:"command"`
			Runs    int    `json:"runs"`
		} `json:"commands"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	require.Len(t, view.Runs, 2)
	assert.False(t, view.Runs[0].Success, "newest run first")
	assert.True(t, view.Runs[1].Success)
	assert.NotEmpty(t, view.Commands)

	stdout, _, err = execute(t, "history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "FAIL")
	assert.NotContains(t, stdout, "PASS")
}
