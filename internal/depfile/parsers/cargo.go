package parsers

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatCargo, parseCargoLock)
}

type cargoLock struct {
	Package []cargoPackage `toml:"package"`
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Source  string `toml:"source"`
}

func parseCargoLock(data []byte) ([]depfile.Package, error) {
	var lf cargoLock
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatCargo, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}
	var pkgs []depfile.Package
	for _, p := range lf.Package {
		if p.Name == "" || p.Version == "" {
			continue
		}
		pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemCargo, Name: p.Name, Version: p.Version})
	}
	return depfile.Dedup(pkgs), nil
}
