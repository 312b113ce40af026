package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/phylum-dev/cli-go/internal/depfile/parsers"
)

func TestParseCmd_PrintsDiscoveredPackages(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte(fixtureNpmLock), 0644))
	restoreWd(t, dir)

	require.NoError(t, h.run("parse"))
	out := h.stdout.String()
	assert.Contains(t, out, "package-lock.json (npm)")
	assert.Contains(t, out, "left-pad@1.3.0")
}

func TestParseCmd_JSONOutput(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte(fixtureNpmLock), 0644))
	restoreWd(t, dir)

	require.NoError(t, h.run("parse", "--json"))
	assert.Contains(t, h.stdout.String(), `"left-pad"`)
}
