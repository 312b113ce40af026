package cli

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylum-dev/cli-go/internal/apiclient"
	"github.com/phylum-dev/cli-go/internal/projectfile"
)

func TestProjectCreateCmd_PrintsIDAndStatus(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(apiclient.CreateProjectResult{ID: "proj-1", Status: apiclient.ProjectExists})
	})
	require.NoError(t, h.run("project", "create", "demo"))
	assert.Equal(t, "proj-1\tExists\n", h.stdout.String())
}

func TestProjectLinkCmd_WritesProjectFile(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	restoreWd(t, dir)

	require.NoError(t, h.run("project", "link", "demo", "proj-7", "--group", "eng"))

	pf, err := projectfile.Load(filepath.Join(dir, projectfile.FileName))
	require.NoError(t, err)
	assert.Equal(t, "proj-7", pf.ID)
	assert.Equal(t, "demo", pf.Name)
}

func TestProjectListCmd_PrintsEachProject(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"p1","name":"one"},{"id":"p2","name":"two"}]`))
	})
	require.NoError(t, h.run("project", "list"))
	out := h.stdout.String()
	assert.Contains(t, out, "p1\tone")
	assert.Contains(t, out, "p2\ttwo")
}

func TestProjectStatusCmd_RequiresLinkedProject(t *testing.T) {
	h := newHarness(t, nil)
	restoreWd(t, t.TempDir())
	require.Error(t, h.run("project", "status"))
}
