package cli

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylum-dev/cli-go/internal/apiclient"
)

func TestPackageCmd_PrintsRiskScore(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/packages/npm/left-pad/1.3.0", r.URL.Path)
		_ = json.NewEncoder(w).Encode(apiclient.PackageDetails{
			Name: "left-pad", Version: "1.3.0", Ecosystem: "npm", RiskScore: 87,
		})
	})
	require.NoError(t, h.run("package", "left-pad", "1.3.0", "--ecosystem", "npm"))
	out := h.stdout.String()
	assert.Contains(t, out, "left-pad@1.3.0 (npm)")
	assert.Contains(t, out, "risk score: 87")
}

func TestPackageCmd_JSONOutput(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(apiclient.PackageDetails{Name: "left-pad", Version: "1.3.0"})
	})
	require.NoError(t, h.run("package", "left-pad", "1.3.0", "--json"))
	var got apiclient.PackageDetails
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, "left-pad", got.Name)
}
