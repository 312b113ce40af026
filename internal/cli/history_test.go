package cli

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylum-dev/cli-go/internal/projectfile"
)

func TestHistoryCmd_RequiresLinkedProject(t *testing.T) {
	h := newHarness(t, nil)
	restoreWd(t, t.TempDir())
	err := h.run("history")
	require.Error(t, err)
}

func TestHistoryCmd_ListsJobs(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/proj-1/jobs", r.URL.Path)
		_, _ = w.Write([]byte(`[{"job_id":"j1","status":"complete","created_at":"2026-01-01"}]`))
	})
	dir := t.TempDir()
	restoreWd(t, dir)
	require.NoError(t, projectfile.Save(filepath.Join(dir, projectfile.FileName), &projectfile.File{ID: "proj-1"}))

	require.NoError(t, h.run("history"))
	assert.Contains(t, h.stdout.String(), "j1")
}
