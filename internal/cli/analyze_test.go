package cli

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/phylum-dev/cli-go/internal/depfile/parsers"
)

const fixtureNpmLock = `{
  "name": "demo",
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "demo"},
    "node_modules/left-pad": {"version": "1.3.0"}
  }
}`

func TestAnalyzeCmd_ErrorsWithNoDependencyFiles(t *testing.T) {
	h := newHarness(t, nil)
	restoreWd(t, t.TempDir())
	err := h.run("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dependency files found")
}

func TestAnalyzeCmd_SubmitsAndPrintsJobLink(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/jobs" && r.Method == http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1"})
		case r.URL.Path == "/v1/jobs/job-1":
			_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1", "status": "complete"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte(fixtureNpmLock), 0644))
	restoreWd(t, dir)

	require.NoError(t, h.run("analyze"))
	out := h.stdout.String()
	assert.Contains(t, out, "Job:  job-1")
	assert.Contains(t, out, "Link:")
}
