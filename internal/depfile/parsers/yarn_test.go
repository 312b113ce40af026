package parsers

import (
	"testing"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func TestParseYarnLock_V1(t *testing.T) {
	data := []byte(`# THIS IS AN AUTOGENERATED FILE. DO NOT EDIT THIS FILE DIRECTLY.
# yarn lockfile v1


left-pad@^1.3.0:
  version "1.3.0"
  resolved "https://registry.yarnpkg.com/left-pad/-/left-pad-1.3.0.tgz"

"@scope/pkg@^2.0.0":
  version "2.0.0"
  resolved "https://registry.yarnpkg.com/@scope/pkg/-/pkg-2.0.0.tgz"
`)

	pkgs, err := parseYarnLock(data)
	if err != nil {
		t.Fatalf("parseYarnLock: %v", err)
	}
	want := []depfile.Package{
		{Ecosystem: depfile.EcosystemNPM, Name: "left-pad", Version: "1.3.0"},
		{Ecosystem: depfile.EcosystemNPM, Name: "@scope/pkg", Version: "2.0.0"},
	}
	if len(pkgs) != len(want) {
		t.Fatalf("got %d packages, want %d: %+v", len(pkgs), len(want), pkgs)
	}
	for i, p := range pkgs {
		if p != want[i] {
			t.Errorf("pkg[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestParseYarnLock_V2Berry(t *testing.T) {
	data := []byte(`# This file is generated by running "yarn install" inside your project.
# Manual changes might be lost - proceed with caution!

__metadata:
  version: 6
  cacheKey: 8

left-pad@^1.3.0:
  version: 1.3.0
  resolution: "left-pad@npm:1.3.0"
  checksum: abc123
  languageName: node
  linkType: hard

"@scope/pkg@^2.0.0":
  version: 2.0.0
  resolution: "@scope/pkg@npm:2.0.0"
  languageName: node
  linkType: hard
`)

	pkgs, err := parseYarnLock(data)
	if err != nil {
		t.Fatalf("parseYarnLock: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("got %d packages, want 2: %+v", len(pkgs), pkgs)
	}
	want := []depfile.Package{
		{Ecosystem: depfile.EcosystemNPM, Name: "left-pad", Version: "1.3.0"},
		{Ecosystem: depfile.EcosystemNPM, Name: "@scope/pkg", Version: "2.0.0"},
	}
	for i, p := range pkgs {
		if p != want[i] {
			t.Errorf("pkg[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}
