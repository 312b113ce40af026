package parsers

import (
	"testing"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func TestParseNugetLock_PreservesOrder(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"dependencies": {
			"net6.0": {
				"Zebra.Pkg": {"type": "Direct", "resolved": "1.0.0"},
				"Mango.Pkg": {"type": "Transitive", "resolved": "2.0.0"},
				"Apple.Pkg": {"type": "Direct", "resolved": "3.0.0"}
			}
		}
	}`)
	pkgs, err := parseNugetLock(data)
	if err != nil {
		t.Fatalf("parseNugetLock: %v", err)
	}
	want := []depfile.Package{
		{Ecosystem: depfile.EcosystemNuGet, Name: "Zebra.Pkg", Version: "1.0.0"},
		{Ecosystem: depfile.EcosystemNuGet, Name: "Mango.Pkg", Version: "2.0.0"},
		{Ecosystem: depfile.EcosystemNuGet, Name: "Apple.Pkg", Version: "3.0.0"},
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

func TestParseNugetLock_SkipsUnresolvedAndMultipleFrameworks(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"dependencies": {
			"net6.0": {"Pkg.A": {"type": "Direct", "resolved": "1.0.0"}},
			"net7.0": {"Pkg.A": {"type": "Direct", "resolved": "1.0.0"}, "Pkg.B": {"type": "Direct"}}
		}
	}`)
	pkgs, err := parseNugetLock(data)
	if err != nil {
		t.Fatalf("parseNugetLock: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "Pkg.A" {
		t.Fatalf("expected deduped single Pkg.A entry, got %+v", pkgs)
	}
}
