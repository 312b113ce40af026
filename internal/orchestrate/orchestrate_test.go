package orchestrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/phylum-dev/cli-go/internal/depfile/parsers"
)

func TestDiscover_PrefersSiblingLockfileOverGeneration(t *testing.T) {
	dir := t.TempDir()
	manifest := `{"dependencies": {"leftpad": "1.0.0"}}`
	lock := `{
		"lockfileVersion": 3,
		"packages": {
			"": {"name": "root"},
			"node_modules/leftpad": {"version": "1.0.0"}
		}
	}`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte(lock), 0644); err != nil {
		t.Fatalf("write lockfile: %v", err)
	}

	files, errs := Discover(context.Background(), dir, ResolveOptions{NoGeneration: true})
	if len(errs) != 0 {
		t.Fatalf("Discover errors: %v", errs)
	}
	if len(files) != 1 {
		t.Fatalf("Discover = %d entries, want 1 (the manifest should be absorbed by its lockfile)", len(files))
	}
	if len(files[0].Resolved.Packages) == 0 {
		t.Fatalf("expected packages from the lockfile")
	}
}

func TestDiscover_GenerationDisabledSurfacesError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/x\n\ngo 1.16\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, errs := Discover(context.Background(), dir, ResolveOptions{NoGeneration: true})
	if len(errs) == 0 {
		t.Fatalf("expected a generation-disabled error for a manifest with no lockfile")
	}
}
