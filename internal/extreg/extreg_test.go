package extreg

import (
	"os"
	"path/filepath"
	"testing"
)

func noBuiltins(string) bool { return false }

func writeSourceExtension(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	if err := New(dir, name); err != nil {
		t.Fatalf("New: %v", err)
	}
	return dir
}

func TestStore_Install_Uninstall_List(t *testing.T) {
	src := writeSourceExtension(t, "demo")
	store := &Store{Dir: t.TempDir()}

	manifest, err := store.Install(src, noBuiltins, InstallOptions{Yes: true})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if manifest.Name != "demo" {
		t.Fatalf("manifest name = %q, want demo", manifest.Name)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "demo" {
		t.Fatalf("List = %+v, want one entry named demo", entries)
	}

	if _, err := store.Resolve("demo"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if err := store.Uninstall("demo"); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if _, err := store.Resolve("demo"); err == nil {
		t.Fatalf("Resolve after uninstall: expected error")
	}
}

func TestStore_Install_RejectsReservedName(t *testing.T) {
	src := writeSourceExtension(t, "analyze")
	store := &Store{Dir: t.TempDir()}

	_, err := store.Install(src, func(name string) bool { return name == "analyze" }, InstallOptions{Yes: true})
	if _, ok := err.(*NameReservedError); !ok {
		t.Fatalf("Install error = %v, want *NameReservedError", err)
	}
}

func TestStore_Install_RejectsCollisionWithoutOverwrite(t *testing.T) {
	src := writeSourceExtension(t, "demo")
	store := &Store{Dir: t.TempDir()}

	if _, err := store.Install(src, noBuiltins, InstallOptions{Yes: true}); err != nil {
		t.Fatalf("first Install: %v", err)
	}
	_, err := store.Install(src, noBuiltins, InstallOptions{Yes: true})
	if _, ok := err.(*NameTakenError); !ok {
		t.Fatalf("second Install error = %v, want *NameTakenError", err)
	}

	if _, err := store.Install(src, noBuiltins, InstallOptions{Yes: true, Overwrite: true}); err != nil {
		t.Fatalf("Install with Overwrite: %v", err)
	}
}

func TestStore_Resolve_DetectsTamperedDirectory(t *testing.T) {
	src := writeSourceExtension(t, "demo")
	store := &Store{Dir: t.TempDir()}
	if _, err := store.Install(src, noBuiltins, InstallOptions{Yes: true}); err != nil {
		t.Fatalf("Install: %v", err)
	}

	tampered := filepath.Join(store.ExtensionDir("demo"), "index.ts")
	if err := os.WriteFile(tampered, []byte("// tampered\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := store.Resolve("demo")
	if _, ok := err.(*IntegrityError); !ok {
		t.Fatalf("Resolve error = %v, want *IntegrityError", err)
	}
}

func TestNew_ScaffoldsRunnableExtension(t *testing.T) {
	dir := t.TempDir()
	if err := New(dir, "sample"); err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "sample" || m.EntryPoint != "index.ts" {
		t.Fatalf("manifest = %+v", m)
	}
}
