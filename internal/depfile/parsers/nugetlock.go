package parsers

import (
	"bytes"
	"encoding/json"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatNugetLock, parseNugetLock)
}

type nugetLockTarget struct {
	Type     string `json:"type"`
	Resolved string `json:"resolved"`
}

// packages.lock.json / packages.<tfm>.lock.json shape:
//
//	{ "version": 1, "dependencies": { "net6.0": { "Pkg": { "type": "Direct", "resolved": "1.2.3" } } } }
//
// Decoded token-by-token (rather than into nested maps) to preserve the
// source file's target-framework and package key order.
func parseNugetLock(data []byte) ([]depfile.Package, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	root, err := decodeOrderedObject(dec)
	if err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatNugetLock, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}
	targets, _, err := orderedObjectField(root, "dependencies")
	if err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatNugetLock, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}

	var pkgs []depfile.Package
	for _, tf := range targets {
		targetDeps, err := decodeOrderedObjectBytes(tf.value)
		if err != nil {
			return nil, &depfile.ParseError{Format: depfile.FormatNugetLock, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
		}
		for _, f := range targetDeps {
			var t nugetLockTarget
			if err := json.Unmarshal(f.value, &t); err != nil {
				return nil, &depfile.ParseError{Format: depfile.FormatNugetLock, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
			}
			if t.Resolved == "" {
				continue
			}
			pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemNuGet, Name: f.key, Version: t.Resolved})
		}
	}
	return depfile.Dedup(pkgs), nil
}
