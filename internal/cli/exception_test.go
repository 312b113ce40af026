package cli

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExceptionAddCmd_PostsPackageAndReason(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/exceptions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
	})
	require.NoError(t, h.run("exception", "add", "left-pad", "--reason", "vetted manually"))
}

func TestExceptionListCmd_PrintsEntries(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"package":"left-pad","reason":"vetted"}]`))
	})
	require.NoError(t, h.run("exception", "list"))
	assert.Contains(t, h.stdout.String(), "left-pad\tvetted")
}

func TestExceptionRemoveCmd_Deletes(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/exceptions/left-pad", r.URL.Path)
		assert.Equal(t, http.MethodDelete, r.Method)
	})
	require.NoError(t, h.run("exception", "remove", "left-pad"))
}
