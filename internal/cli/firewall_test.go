package cli

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirewallLogCmd_PassesLimitAndPrintsEntries(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/firewall/log", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"package":"left-pad","action":"blocked","reason":"malware"}]`))
	})
	require.NoError(t, h.run("firewall", "log", "--limit", "10"))
	assert.Contains(t, h.stdout.String(), "blocked\tleft-pad\tmalware")
}
