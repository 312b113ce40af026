package dispatcher

import (
	"testing"

	"github.com/phylum-dev/cli-go/internal/extreg"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

func TestResolve_BuiltinWinsOverExtension(t *testing.T) {
	store := &extreg.Store{Dir: t.TempDir()}
	src := t.TempDir()
	if err := extreg.New(src, "analyze"); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Install(src, func(string) bool { return false }, extreg.InstallOptions{Yes: true}); err != nil {
		t.Fatalf("Install: %v", err)
	}

	res, err := Resolve("analyze", map[string]bool{"analyze": true}, store)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res != ResolutionBuiltin {
		t.Fatalf("Resolve = %v, want ResolutionBuiltin", res)
	}
}

func TestResolve_FindsInstalledExtension(t *testing.T) {
	store := &extreg.Store{Dir: t.TempDir()}
	src := t.TempDir()
	if err := extreg.New(src, "mytool"); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Install(src, func(string) bool { return false }, extreg.InstallOptions{Yes: true}); err != nil {
		t.Fatalf("Install: %v", err)
	}

	res, err := Resolve("mytool", map[string]bool{"analyze": true}, store)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res != ResolutionExtension {
		t.Fatalf("Resolve = %v, want ResolutionExtension", res)
	}
}

func TestNeedsReexec_UnconfinedProcessAlwaysReexecs(t *testing.T) {
	effective := sandbox.PermissionSet{Read: sandbox.PathGrant{Paths: []string{"/tmp"}}}
	if !NeedsReexec(sandbox.PermissionSet{}, effective) {
		t.Fatalf("expected reexec to be required from an unconfined baseline")
	}
}
