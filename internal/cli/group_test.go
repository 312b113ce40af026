package cli

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupCreateCmd_PostsName(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/groups", r.URL.Path)
	})
	require.NoError(t, h.run("group", "create", "eng"))
}

func TestGroupListCmd_PrintsNames(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"eng"},{"name":"security"}]`))
	})
	require.NoError(t, h.run("group", "list"))
	out := h.stdout.String()
	assert.Contains(t, out, "eng\n")
	assert.Contains(t, out, "security\n")
}

func TestGroupMemberAddCmd_PostsEmail(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/groups/eng/members", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
	})
	require.NoError(t, h.run("group", "member", "add", "eng", "alice@example.com"))
}
