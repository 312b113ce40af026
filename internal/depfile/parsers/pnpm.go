package parsers

import (
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
	"gopkg.in/yaml.v3"
)

func init() {
	depfile.Register(depfile.FormatPnpm, parsePnpmLock)
}

// parsePnpmLock walks the document as a yaml.Node tree rather than
// unmarshaling "packages" into a Go map: a map would discard the source
// file's key order, and §4.2 requires the emitted package list to
// preserve first-seen order.
//
// Keys cover the shapes seen across lockfileVersion 5.x, 6.x and 9.x:
// v5/v6 key packages by "/name/version" (or "/@scope/name/version"), v9
// keys them by "name@version". Both are handled by stripping a leading
// slash and splitting on the last "@" (v9) or last "/" (v5/v6).
func parsePnpmLock(data []byte) ([]depfile.Package, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatPnpm, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, nil
	}

	packagesNode := mappingValue(doc, "packages")
	if packagesNode == nil || packagesNode.Kind != yaml.MappingNode {
		return nil, nil
	}

	var pkgs []depfile.Package
	for i := 0; i+1 < len(packagesNode.Content); i += 2 {
		key := packagesNode.Content[i].Value
		name, version := pnpmSplitKey(key)
		if name == "" || version == "" {
			continue
		}
		pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemNPM, Name: name, Version: version})
	}
	return depfile.Dedup(pkgs), nil
}

// mappingValue returns the value node paired with the given key in a
// yaml.MappingNode's Content (which alternates key, value, key, value…).
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func pnpmSplitKey(key string) (name, version string) {
	k := strings.TrimPrefix(key, "/")
	// Strip a peer-deps parenthetical suffix, e.g. "(react@18.0.0)".
	if i := strings.Index(k, "("); i >= 0 {
		k = k[:i]
	}
	if at := strings.LastIndex(k, "@"); at > strings.LastIndex(k, "/") {
		name = k[:at]
		version = k[at+1:]
		return name, version
	}
	lastSlash := strings.LastIndex(k, "/")
	if lastSlash < 0 {
		return "", ""
	}
	return k[:lastSlash], k[lastSlash+1:]
}
