package parsers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatPipenv, parsePipfileLock)
}

type pipfileLockEntry struct {
	Version string `json:"version"`
}

// parsePipfileLock decodes Pipfile.lock's "default" and "develop" sections
// token-by-token rather than into plain maps, preserving the source file's
// package key order within each section.
func parsePipfileLock(data []byte) ([]depfile.Package, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	root, err := decodeOrderedObject(dec)
	if err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatPipenv, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}

	var pkgs []depfile.Package
	for _, section := range []string{"default", "develop"} {
		entries, _, err := orderedObjectField(root, section)
		if err != nil {
			return nil, &depfile.ParseError{Format: depfile.FormatPipenv, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
		}
		for _, f := range entries {
			var e pipfileLockEntry
			if err := json.Unmarshal(f.value, &e); err != nil {
				return nil, &depfile.ParseError{Format: depfile.FormatPipenv, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
			}
			if v := strings.TrimPrefix(e.Version, "=="); v != "" {
				pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemPyPI, Name: f.key, Version: v})
			}
		}
	}
	return depfile.Dedup(pkgs), nil
}
