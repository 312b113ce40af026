package parsers

import (
	"net/url"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

// purlEcosystems maps a package-url "type" segment to a depfile.Ecosystem.
// purl types with no corresponding entry (e.g. "docker", "generic") make
// parsePurl return ok=false; no diagnostic is emitted for them.
var purlEcosystems = map[string]depfile.Ecosystem{
	"npm":      depfile.EcosystemNPM,
	"pypi":     depfile.EcosystemPyPI,
	"gem":      depfile.EcosystemRubyGems,
	"maven":    depfile.EcosystemMaven,
	"nuget":    depfile.EcosystemNuGet,
	"golang":   depfile.EcosystemGolang,
	"cargo":    depfile.EcosystemCargo,
}

// parsePurl decodes a package-url string ("pkg:npm/left-pad@1.3.0") into an
// (ecosystem, name, version) tuple. Returns ok=false for purl types this
// system does not model as a first-class ecosystem.
func parsePurl(purl string) (depfile.Ecosystem, string, string, bool) {
	if !strings.HasPrefix(purl, "pkg:") {
		return "", "", "", false
	}
	rest := strings.TrimPrefix(purl, "pkg:")
	// Drop qualifiers/subpath.
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return "", "", "", false
	}
	ptype := rest[:slash]
	eco, ok := purlEcosystems[ptype]
	if !ok {
		return "", "", "", false
	}
	nameVersion := rest[slash+1:]
	at := strings.LastIndex(nameVersion, "@")
	if at < 0 {
		return "", "", "", false
	}
	name, version := nameVersion[:at], nameVersion[at+1:]
	if name == "" || version == "" {
		return "", "", "", false
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if decoded, err := url.PathUnescape(version); err == nil {
		version = decoded
	}
	return eco, name, version, true
}
