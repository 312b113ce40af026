package parsers

import (
	"testing"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func TestParsePipfileLock_PreservesOrderAcrossSections(t *testing.T) {
	data := []byte(`{
		"default": {
			"zebra": {"version": "==1.0.0"},
			"mango": {"version": "==2.0.0"}
		},
		"develop": {
			"pytest": {"version": "==7.0.0"},
			"apple": {"version": "==3.0.0"}
		}
	}`)
	pkgs, err := parsePipfileLock(data)
	if err != nil {
		t.Fatalf("parsePipfileLock: %v", err)
	}
	want := []depfile.Package{
		{Ecosystem: depfile.EcosystemPyPI, Name: "zebra", Version: "1.0.0"},
		{Ecosystem: depfile.EcosystemPyPI, Name: "mango", Version: "2.0.0"},
		{Ecosystem: depfile.EcosystemPyPI, Name: "pytest", Version: "7.0.0"},
		{Ecosystem: depfile.EcosystemPyPI, Name: "apple", Version: "3.0.0"},
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

func TestParsePipfileLock_SkipsEntriesWithoutPinnedVersion(t *testing.T) {
	data := []byte(`{
		"default": {
			"zebra": {"version": "==1.0.0"},
			"editable-local": {"editable": true}
		}
	}`)
	pkgs, err := parsePipfileLock(data)
	if err != nil {
		t.Fatalf("parsePipfileLock: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "zebra" {
		t.Fatalf("expected only zebra, got %+v", pkgs)
	}
}
