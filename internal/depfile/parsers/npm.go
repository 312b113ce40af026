// Package parsers holds one pure bytes-to-package-list function per
// ecosystem format, registered into internal/depfile's dispatch table.
package parsers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatNPM, parseNpmLock)
}

type npmLockPackage struct {
	Version    string `json:"version"`
	Resolved   string `json:"resolved"`
	Link       bool   `json:"link"`
	Dev        bool   `json:"dev"`
	Extraneous bool   `json:"extraneous"`
}

type npmLockDep struct {
	Version  string `json:"version"`
	Resolved string `json:"resolved"`
	Dev      bool   `json:"dev"`
}

// parseNpmLock decodes package-lock.json (v1 and v2+) token-by-token
// rather than into a plain map, so the emitted package list preserves the
// source file's key order instead of Go's randomized map iteration order.
func parseNpmLock(data []byte) ([]depfile.Package, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	root, err := decodeOrderedObject(dec)
	if err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatNPM, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}

	packages, hasPackages, err := orderedObjectField(root, "packages")
	if err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatNPM, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}
	dependencies, hasDependencies, err := orderedObjectField(root, "dependencies")
	if err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatNPM, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}

	var pkgs []depfile.Package

	switch {
	case hasPackages && len(packages) > 0:
		// v2+ flat "packages" map keyed by node_modules path; "" is the
		// root project itself and is excluded.
		for _, f := range packages {
			if f.key == "" {
				continue
			}
			var p npmLockPackage
			if err := json.Unmarshal(f.value, &p); err != nil {
				return nil, &depfile.ParseError{Format: depfile.FormatNPM, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
			}
			if p.Extraneous || p.Link {
				continue
			}
			name := npmNameFromPath(f.key)
			ver, aliased := npmResolveAlias(p.Version)
			if aliased != "" {
				name = aliased
			}
			if name == "" || ver == "" {
				continue
			}
			pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemNPM, Name: name, Version: ver})
		}
	case hasDependencies && len(dependencies) > 0:
		// v1 nested "dependencies" tree.
		pkgs, err = npmWalkV1(dependencies, pkgs)
		if err != nil {
			return nil, &depfile.ParseError{Format: depfile.FormatNPM, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
		}
	default:
		return nil, &depfile.ParseError{
			Format: depfile.FormatNPM, Kind: depfile.ParseErrorUnsupported, Offset: -1,
			Err: errNpmNoRecognizedShape,
		}
	}

	return depfile.Dedup(pkgs), nil
}

func npmWalkV1(deps []orderedField, into []depfile.Package) ([]depfile.Package, error) {
	for _, f := range deps {
		var d npmLockDep
		if err := json.Unmarshal(f.value, &d); err != nil {
			return nil, err
		}
		ver, aliased := npmResolveAlias(d.Version)
		name := f.key
		if aliased != "" {
			name = aliased
		}
		if name != "" && ver != "" {
			into = append(into, depfile.Package{Ecosystem: depfile.EcosystemNPM, Name: name, Version: ver})
		}

		nestedFields, err := decodeOrderedObjectBytes(f.value)
		if err != nil {
			return nil, err
		}
		nestedDeps, hasNestedDeps, err := orderedObjectField(nestedFields, "dependencies")
		if err != nil {
			return nil, err
		}
		if hasNestedDeps && len(nestedDeps) > 0 {
			into, err = npmWalkV1(nestedDeps, into)
			if err != nil {
				return nil, err
			}
		}
	}
	return into, nil
}

// npmResolveAlias handles aliased dependencies of the form
// "npm:bar@1.2.3" (scenario 1 in §8): the emitted package is {npm, bar,
// 1.2.3}, never the alias name, and never appears without a version.
func npmResolveAlias(version string) (resolvedVersion string, aliasedName string) {
	if strings.HasPrefix(version, "npm:") {
		rest := strings.TrimPrefix(version, "npm:")
		at := strings.LastIndex(rest, "@")
		if at <= 0 {
			return "", ""
		}
		return rest[at+1:], rest[:at]
	}
	return version, ""
}

func npmNameFromPath(path string) string {
	idx := strings.LastIndex(path, "node_modules/")
	if idx < 0 {
		return path
	}
	return path[idx+len("node_modules/"):]
}

var errNpmNoRecognizedShape = npmShapeError{}

type npmShapeError struct{}

func (npmShapeError) Error() string {
	return "package-lock.json: neither v2+ \"packages\" nor v1 \"dependencies\" present (legacy/ancient format unsupported)"
}
