package parsers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
	"gopkg.in/yaml.v3"
)

func init() {
	depfile.Register(depfile.FormatSpdx, parseSpdx)
}

type spdxDocument struct {
	SPDXID   string        `json:"SPDXID" yaml:"SPDXID"`
	Packages []spdxPackage `json:"packages" yaml:"packages"`
}

type spdxPackage struct {
	SPDXID           string                 `json:"SPDXID" yaml:"SPDXID"`
	Name             string                 `json:"name" yaml:"name"`
	VersionInfo      string                 `json:"versionInfo" yaml:"versionInfo"`
	ExternalRefs     []spdxExternalRef      `json:"externalRefs" yaml:"externalRefs"`
}

type spdxExternalRef struct {
	ReferenceCategory string `json:"referenceCategory" yaml:"referenceCategory"`
	ReferenceType     string `json:"referenceType" yaml:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator" yaml:"referenceLocator"`
}

// parseSpdx handles structured JSON and YAML SPDX documents as well as the
// tag:value form. Every package with a supported purl, or else with a name
// and a versionInfo other than NOASSERTION, is emitted; the document's own
// described package (the root SBOM subject) is not excluded.
func parseSpdx(data []byte) ([]depfile.Package, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc spdxDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &depfile.ParseError{Format: depfile.FormatSpdx, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
		}
		return spdxPackagesToList(doc.Packages), nil
	}
	if looksLikeSpdxTagValue(data) {
		return parseSpdxTagValue(data)
	}
	var doc spdxDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatSpdx, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
	}
	return spdxPackagesToList(doc.Packages), nil
}

func spdxPackagesToList(packages []spdxPackage) []depfile.Package {
	var pkgs []depfile.Package
	for _, p := range packages {
		eco, name, version, ok := spdxPurlToPackage(p)
		if !ok {
			continue
		}
		pkgs = append(pkgs, depfile.Package{Ecosystem: eco, Name: name, Version: version})
	}
	return depfile.Dedup(pkgs)
}

func spdxPurlToPackage(p spdxPackage) (depfile.Ecosystem, string, string, bool) {
	for _, ref := range p.ExternalRefs {
		if ref.ReferenceType != "purl" {
			continue
		}
		eco, name, version, ok := parsePurl(ref.ReferenceLocator)
		if ok {
			return eco, name, version, true
		}
	}
	if p.Name != "" && p.VersionInfo != "" && p.VersionInfo != "NOASSERTION" {
		return depfile.EcosystemUnknown, p.Name, p.VersionInfo, true
	}
	return "", "", "", false
}

func looksLikeSpdxTagValue(data []byte) bool {
	return bytes.Contains(data, []byte("SPDXVersion:")) || bytes.Contains(data, []byte("PackageName:"))
}

// parseSpdxTagValue parses the "Tag: Value" line format, grouping
// consecutive PackageName/PackageVersion/ExternalRef lines into packages.
func parseSpdxTagValue(data []byte) ([]depfile.Package, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var pkgs []depfile.Package
	var curName, curVersion string
	var curPurl string

	flush := func() {
		if curPurl != "" {
			if eco, name, version, ok := parsePurl(curPurl); ok {
				pkgs = append(pkgs, depfile.Package{Ecosystem: eco, Name: name, Version: version})
			}
		} else if curName != "" && curVersion != "" {
			pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemUnknown, Name: curName, Version: curVersion})
		}
		curName, curVersion, curPurl = "", "", ""
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "PackageName:"):
			flush()
			curName = strings.TrimSpace(strings.TrimPrefix(line, "PackageName:"))
		case strings.HasPrefix(line, "PackageVersion:"):
			curVersion = strings.TrimSpace(strings.TrimPrefix(line, "PackageVersion:"))
		case strings.HasPrefix(line, "ExternalRef:") && strings.Contains(line, "purl"):
			fields := strings.Fields(line)
			if len(fields) > 0 {
				curPurl = fields[len(fields)-1]
			}
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatSpdx, Kind: depfile.ParseErrorTruncated, Offset: -1, Err: err}
	}
	return depfile.Dedup(pkgs), nil
}
