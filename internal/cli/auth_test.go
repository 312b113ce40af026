package cli

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylum-dev/cli-go/internal/apiclient"
)

func TestAuthSetTokenAndStatusCmd_RoundTrip(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/user" {
			assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(apiclient.UserInfo{Email: "dev@example.com"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	t.Setenv("PHYLUM_API_KEY", "")

	require.NoError(t, h.run("auth", "set-token", "sekrit"))
	h.stdout.Reset()

	require.NoError(t, h.run("auth", "status"))
	assert.Contains(t, h.stdout.String(), "Logged in as dev@example.com")
}

func TestAuthStatusCmd_NotLoggedIn(t *testing.T) {
	h := newHarness(t, nil)
	t.Setenv("PHYLUM_API_KEY", "")
	require.NoError(t, h.run("auth", "status"))
	assert.Contains(t, h.stdout.String(), "Not logged in.")
}

func TestAuthTokenCmd_PrefersEnvVar(t *testing.T) {
	h := newHarness(t, nil)
	t.Setenv("PHYLUM_API_KEY", "env-token")
	require.NoError(t, h.run("auth", "token"))
	assert.Equal(t, "env-token\n", h.stdout.String())
}

func TestAuthLogoutCmd_ClearsStoredSecret(t *testing.T) {
	h := newHarness(t, nil)
	t.Setenv("PHYLUM_API_KEY", "")
	require.NoError(t, h.run("auth", "set-token", "sekrit"))
	require.NoError(t, h.run("auth", "logout"))

	_, cfg := loadSavedConfig(t, h)
	assert.Equal(t, "", cfg.ActiveProfile().Auth.Secret)
}

func TestAuthCreateTokenCmd_PrintsToken(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})
	require.NoError(t, h.run("auth", "create-token", "--name", "ci"))
	assert.Equal(t, "tok-123\n", h.stdout.String())
}

func TestAuthListTokensCmd_PrintsEach(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"t1","name":"ci"}]`))
	})
	require.NoError(t, h.run("auth", "list-tokens"))
	assert.Contains(t, h.stdout.String(), "t1\tci")
}

func TestAuthRevokeTokenCmd_Deletes(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tokens/t1", r.URL.Path)
		assert.Equal(t, http.MethodDelete, r.Method)
	})
	require.NoError(t, h.run("auth", "revoke-token", "t1"))
}

func TestAuthRegisterCmd_PostsEmail(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/register", r.URL.Path)
	})
	require.NoError(t, h.run("auth", "register", "--email", "dev@example.com"))
}
