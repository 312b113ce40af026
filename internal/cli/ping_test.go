package cli

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingCmd_ReportsOKOnHealthyServer(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, h.run("ping"))
	assert.Equal(t, "ok\n", h.stdout.String())
}

func TestPingCmd_PropagatesServerError(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := h.run("ping")
	require.Error(t, err)
}
