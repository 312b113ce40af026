package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylum-dev/cli-go/internal/projectfile"
)

func TestStatusCmd_NoProjectLinked(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	restoreWd(t, dir)

	require.NoError(t, h.run("status"))
	assert.Contains(t, h.stdout.String(), "No project linked")
	assert.Contains(t, h.stdout.String(), "Auth: not logged in")
}

func TestStatusCmd_ReportsLinkedProject(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	restoreWd(t, dir)

	require.NoError(t, projectfile.Save(filepath.Join(dir, projectfile.FileName), &projectfile.File{
		ID: "proj-1", Name: "demo", Group: "eng", Organization: "acme",
	}))

	require.NoError(t, h.run("status"))
	assert.Contains(t, h.stdout.String(), "Project: demo (group: eng, org: acme)")
}

func TestSandboxInfoCmd_ReportsPlatform(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.run("status", "sandbox", "info"))
	assert.Contains(t, h.stdout.String(), "platform:")
	assert.Contains(t, h.stdout.String(), "available:")
}

// restoreWd chdirs to dir for the duration of the test, restoring the
// original working directory afterward.
func restoreWd(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}
