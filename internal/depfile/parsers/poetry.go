package parsers

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatPoetry, parsePoetryLock)
}

// poetryLock covers both v1 (top-level [[package]] array) and v2 (same
// shape, with an added metadata.lock-version field we don't need to branch
// on since the package table layout is unchanged between the two).
type poetryLock struct {
	Package []poetryPackage `toml:"package"`
}

type poetryPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Source  struct {
		Type string `toml:"type"`
	} `toml:"source"`
}

func parsePoetryLock(data []byte) ([]depfile.Package, error) {
	var lf poetryLock
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatPoetry, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}
	var pkgs []depfile.Package
	for _, p := range lf.Package {
		// Filter non-PyPI sources (git/url/directory deps) per §4.2's
		// "filter non-PyPI sources" note: only packages with no source
		// table, or an explicit "legacy"/empty type, resolve from PyPI.
		if p.Source.Type != "" && p.Source.Type != "legacy" {
			continue
		}
		if p.Name == "" || p.Version == "" {
			continue
		}
		pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemPyPI, Name: p.Name, Version: p.Version})
	}
	return depfile.Dedup(pkgs), nil
}
