package parsers

import (
	"encoding/xml"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatMSBuild, parseCsproj)
}

type csprojProject struct {
	ItemGroups []csprojItemGroup `xml:"ItemGroup"`
}

type csprojItemGroup struct {
	PackageReferences []csprojPackageRef `xml:"PackageReference"`
}

type csprojPackageRef struct {
	Include string `xml:"Include,attr"`
	Version string `xml:"Version,attr"`
}

// parseCsproj extracts declared <PackageReference Include="..." Version="..."/>
// entries. A .csproj is a manifest, not a lockfile: versions here are the
// developer's declared constraints, not a resolver's pinned output.
func parseCsproj(data []byte) ([]depfile.Package, error) {
	var proj csprojProject
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatMSBuild, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}
	var pkgs []depfile.Package
	for _, group := range proj.ItemGroups {
		for _, ref := range group.PackageReferences {
			if ref.Include == "" || ref.Version == "" {
				continue
			}
			pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemNuGet, Name: ref.Include, Version: ref.Version})
		}
	}
	return depfile.Dedup(pkgs), nil
}
