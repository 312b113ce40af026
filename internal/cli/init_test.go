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

func TestInitCmd_CreatesProjectAndLinksDirectory(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects", r.URL.Path)
		_ = json.NewEncoder(w).Encode(apiclient.CreateProjectResult{ID: "proj-9", Status: apiclient.ProjectCreated})
	})
	dir := t.TempDir()
	restoreWd(t, dir)

	require.NoError(t, h.run("init", "--name", "demo", "--group", "eng"))
	assert.Contains(t, h.stdout.String(), `Linked`)

	pf, err := projectfile.Load(filepath.Join(dir, projectfile.FileName))
	require.NoError(t, err)
	assert.Equal(t, "proj-9", pf.ID)
	assert.Equal(t, "demo", pf.Name)
	assert.Equal(t, "eng", pf.Group)
}
