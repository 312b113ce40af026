package sandbox

import (
	"context"
	"testing"
)

func TestPathGrant_ExactVsSubstring(t *testing.T) {
	g := PathGrant{Paths: []string{"/usr/bin/ls"}}
	if g.Allows("/usr/bin/lsx") {
		t.Error("substring match must not be allowed")
	}
	if !g.Allows("/usr/bin/ls") {
		t.Error("exact path must be allowed")
	}
	if g.Allows("ls") {
		t.Error("bare command name must not satisfy an absolute-path grant")
	}
}

func TestPathGrant_DirectoryImpliesDescendants(t *testing.T) {
	g := PathGrant{Paths: []string{"/home/user/project"}}
	if !g.Allows("/home/user/project/sub/file.txt") {
		t.Error("a directory grant should cover descendants")
	}
	if g.Allows("/home/user/other") {
		t.Error("a sibling directory should not be covered")
	}
}

func TestPermissionSet_RunImpliesRead(t *testing.T) {
	p := PermissionSet{Run: PathGrant{Paths: []string{"/usr/bin/npm"}}}
	read := p.EffectiveRead()
	if !read.Allows("/usr/bin/npm") {
		t.Error("granting run X should imply read X")
	}
}

func TestPermissionSet_Subset(t *testing.T) {
	broad := PermissionSet{Read: PathGrant{All: true}, Run: PathGrant{Paths: []string{"/bin/echo"}}}
	narrow := PermissionSet{Read: PathGrant{Paths: []string{"/tmp"}}, Run: PathGrant{Paths: []string{"/bin/echo"}}}

	if !narrow.Subset(broad) {
		t.Error("narrow should be a subset of broad")
	}
	if broad.Subset(narrow) {
		t.Error("broad (All read) should not be a subset of narrow")
	}
}

func TestCheckRunPermission_DeniesUnlistedExecutable(t *testing.T) {
	cmd := Command{
		Path: "/bin/cat",
		Permissions: PermissionSet{
			Run: PathGrant{Paths: []string{"/bin/echo"}},
		},
	}
	if err := checkRunPermission(cmd); err == nil {
		t.Fatal("expected PermissionDenied for an executable outside the run grant")
	}
}

func TestRun_DeniesBeforeSpawning(t *testing.T) {
	// Scenario 3 in §8: a manifest granting run=["echo"] must deny a
	// runSandboxed call for "cat" at the permission-check layer, and must
	// not spawn a "cat" process at all.
	cmd := Command{
		Path:        "/bin/cat",
		Permissions: PermissionSet{Run: PathGrant{Paths: []string{"/bin/echo"}}},
	}
	_, err := Run(context.Background(), cmd)
	if err == nil {
		t.Fatal("expected an error")
	}
	var pd *PermissionDeniedError
	if e, ok := err.(*PermissionDeniedError); ok {
		pd = e
	}
	if pd == nil {
		t.Fatalf("expected *PermissionDeniedError, got %T: %v", err, err)
	}
}
