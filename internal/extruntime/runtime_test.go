package extruntime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/phylum-dev/cli-go/internal/depfile/parsers"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

func newTestEngine(t *testing.T, perms sandbox.PermissionSet, entryDir string) *Engine {
	t.Helper()
	return New(context.Background(), Config{
		Permissions: perms,
		EntryDir:    entryDir,
	})
}

func TestEngine_Permissions_ReflectsEffectiveSet(t *testing.T) {
	e := newTestEngine(t, sandbox.PermissionSet{
		Read: sandbox.PathGrant{Paths: []string{"/tmp"}},
		Net:  sandbox.HostGrant{All: true},
	}, t.TempDir())

	out := e.jsPermissions()
	paths, _ := out["read"].([]string)
	if len(paths) != 1 || paths[0] != "/tmp" {
		t.Fatalf("permissions()[read] = %v", out["read"])
	}
}

func TestEngine_RequireNet_DeniesUngrantedHost(t *testing.T) {
	e := newTestEngine(t, sandbox.PermissionSet{}, t.TempDir())
	if err := e.requireNet("https://api.phylum.io"); err == nil {
		t.Fatalf("expected permission denied for ungranted host")
	}
}

func TestEngine_ParseDependencyFile_RequiresReadGrant(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "package.json")
	if err := os.WriteFile(manifestPath, []byte(`{"dependencies":{}}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	e := newTestEngine(t, sandbox.PermissionSet{}, dir)
	_, err := e.parseDependencyFile("package.json", "", false, false)
	if err == nil {
		t.Fatalf("expected permission denied without a read grant")
	}
}

func TestEngine_ParseDependencyFile_ParsesGrantedLockfile(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "package-lock.json")
	data := `{
		"lockfileVersion": 3,
		"packages": {
			"": {"name": "root"},
			"node_modules/leftpad": {"version": "1.0.0"}
		}
	}`
	if err := os.WriteFile(lockPath, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	e := newTestEngine(t, sandbox.PermissionSet{Read: sandbox.PathGrant{Paths: []string{dir}}}, dir)
	df, err := e.parseDependencyFile("package-lock.json", "", false, false)
	if err != nil {
		t.Fatalf("parseDependencyFile: %v", err)
	}
	if len(df.Packages) == 0 {
		t.Fatalf("expected at least one package, got none")
	}
}

func TestEngine_RunSandboxed_DeniesPermissionsExceedingGrant(t *testing.T) {
	e := newTestEngine(t, sandbox.PermissionSet{Run: sandbox.PathGrant{Paths: []string{"/bin/true"}}}, t.TempDir())

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected jsRunSandboxed to panic (throw) on over-broad request")
		}
	}()
	e.jsRunSandboxed(map[string]any{
		"path": "/bin/true",
		"permissions": map[string]any{
			"run": []any{"/bin/true", "/bin/false"},
		},
	})
}
