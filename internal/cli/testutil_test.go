package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/phylum-dev/cli-go/internal/config"
)

// testHarness isolates one invocation of the root command: its own
// XDG config/data dirs, an optional fake API server, and captured stdio.
type testHarness struct {
	t      *testing.T
	cmd    *cobra.Command
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	server *httptest.Server
}

// newHarness wires XDG_CONFIG_HOME/XDG_DATA_HOME to fresh temp dirs (so
// config.DefaultStore/extreg.NewStore never touch the real home directory)
// and, if handler is non-nil, points settings.yaml's api_base_url at a
// test server using that handler.
func newHarness(t *testing.T, handler http.HandlerFunc) *testHarness {
	t.Helper()
	configHome := t.TempDir()
	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_DATA_HOME", dataHome)

	h := &testHarness{t: t}

	baseURL := ""
	if handler != nil {
		h.server = httptest.NewServer(handler)
		t.Cleanup(h.server.Close)
		baseURL = h.server.URL
	}

	if baseURL != "" {
		store := &config.Store{Path: filepath.Join(configHome, "phylum", "settings.yaml")}
		cfg := config.Default()
		cfg.APIBaseURL = baseURL
		require.NoError(t, store.Save(cfg))
	}

	h.stdout = &bytes.Buffer{}
	h.stderr = &bytes.Buffer{}
	h.cmd = NewRootCommandWithIO(strings.NewReader(""), h.stdout, h.stderr)
	return h
}

func (h *testHarness) run(args ...string) error {
	h.cmd.SetArgs(args)
	return h.cmd.Execute()
}
