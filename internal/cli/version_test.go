package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_PrintsUserAgent(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.run("version"))
	assert.True(t, strings.HasPrefix(h.stdout.String(), "phylum-cli/"))
}
