package cli

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylum-dev/cli-go/pkg/version"
)

func TestUpdateCmd_AlreadyUpToDate(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"version": version.Version})
	})
	require.NoError(t, h.run("update"))
	assert.Contains(t, h.stdout.String(), "Already up to date")
}

func TestUpdateCmd_NewerVersionAvailable(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"version": "99.0.0"})
	})
	require.NoError(t, h.run("update"))
	assert.Contains(t, h.stdout.String(), "A newer version is available: 99.0.0")
}
