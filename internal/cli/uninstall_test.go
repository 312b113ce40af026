package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUninstallCmd_RequiresYesFlag(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.run("uninstall"))
	assert.Contains(t, h.stdout.String(), "Pass --yes to confirm")
}

func TestUninstallCmd_RemovesConfigAndExtensionData(t *testing.T) {
	h := newHarness(t, nil)
	// Touch settings.yaml so there is something to remove.
	require.NoError(t, h.run("auth", "set-token", "sekrit"))
	h.stdout.Reset()

	require.NoError(t, h.run("uninstall", "--yes"))
	assert.Contains(t, h.stdout.String(), "Removed local configuration and extension data.")
}
