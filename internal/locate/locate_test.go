package locate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestWalk_YarnLockSatisfiesPackageJSONManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)
	writeFile(t, dir, "yarn.lock", "# yarn lockfile v1\n")

	entries, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	var sawManifest, sawLockfile bool
	for _, e := range entries {
		switch {
		case e.Kind == depfile.KindManifest && e.Format == depfile.FormatNPM:
			sawManifest = true
		case e.Kind == depfile.KindLockfile && e.Format == depfile.FormatYarn:
			sawLockfile = true
		}
	}
	if sawManifest {
		t.Errorf("package.json should be skipped when yarn.lock is present, got entries: %+v", entries)
	}
	if !sawLockfile {
		t.Errorf("expected yarn.lock to be discovered, got entries: %+v", entries)
	}
}

func TestWalk_PnpmLockSatisfiesPackageJSONManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)
	writeFile(t, dir, "pnpm-lock.yaml", "lockfileVersion: '6.0'\n")

	entries, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	for _, e := range entries {
		if e.Kind == depfile.KindManifest && e.Format == depfile.FormatNPM {
			t.Errorf("package.json should be skipped when pnpm-lock.yaml is present, got entries: %+v", entries)
		}
	}
}

func TestWalk_ManifestKeptWhenNoCorrespondingLockfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)

	entries, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 1 || entries[0].Format != depfile.FormatNPM || entries[0].Kind != depfile.KindManifest {
		t.Fatalf("expected exactly the package.json manifest, got %+v", entries)
	}
}

func TestWalk_PyprojectNotSatisfiedByUnrelatedLockfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[tool.poetry]\n")
	writeFile(t, dir, "Cargo.lock", "")

	entries, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	var sawManifest bool
	for _, e := range entries {
		if e.Kind == depfile.KindManifest && e.Format == depfile.FormatPoetry {
			sawManifest = true
		}
	}
	if !sawManifest {
		t.Errorf("pyproject.toml must not be skipped by an unrelated Cargo.lock, got %+v", entries)
	}
}
