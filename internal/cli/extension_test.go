package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionNewInstallListUninstall_RoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	src := filepath.Join(t.TempDir(), "demo")

	require.NoError(t, h.run("extension", "new", src))
	h.stdout.Reset()

	require.NoError(t, h.run("extension", "install", src, "--yes"))
	assert.Contains(t, h.stdout.String(), "Installed demo")
	h.stdout.Reset()

	require.NoError(t, h.run("extension", "list"))
	assert.Contains(t, h.stdout.String(), "demo")
	h.stdout.Reset()

	require.NoError(t, h.run("extension", "uninstall", "demo"))
	assert.Contains(t, h.stdout.String(), "Uninstalled demo")
}

func TestExtensionInstallCmd_RejectsReservedName(t *testing.T) {
	h := newHarness(t, nil)
	src := filepath.Join(t.TempDir(), "analyze")
	require.NoError(t, h.run("extension", "new", src))

	err := h.run("extension", "install", src, "--yes")
	require.Error(t, err)
}

func TestExtensionRunCmd_ExecutesUninstalledScript(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	manifest := `name = "scratch"
description = "scratch extension"
entry_point = "index.ts"

[permissions]
read = false
write = false
run = false
env = false
net = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "PhylumExt.toml"), []byte(manifest), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.ts"), []byte(`console.log("hi from scratch")`), 0644))

	require.NoError(t, h.run("extension", "run", dir, "--yes"))
}
