package parsers

import (
	"bytes"
	"encoding/json"
	"encoding/xml"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatCycloneDX, parseCycloneDX)
}

type cdxBomJSON struct {
	Components []cdxComponentJSON `json:"components"`
}

type cdxComponentJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Purl    string `json:"purl"`
}

type cdxBomXML struct {
	XMLName    xml.Name          `xml:"bom"`
	Components []cdxComponentXML `xml:"components>component"`
}

type cdxComponentXML struct {
	Name    string `xml:"name"`
	Version string `xml:"version"`
	Purl    string `xml:"purl"`
}

// parseCycloneDX handles both the JSON and XML CycloneDX BOM forms.
// Components whose purl names an ecosystem this system doesn't model are
// skipped rather than failing the parse; no diagnostic is emitted for them.
func parseCycloneDX(data []byte) ([]depfile.Package, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &depfile.ParseError{Format: depfile.FormatCycloneDX, Kind: depfile.ParseErrorTruncated, Offset: 0, Err: errCdxEmpty}
	}

	var components []cdxComponent
	if trimmed[0] == '{' {
		var bom cdxBomJSON
		if err := json.Unmarshal(data, &bom); err != nil {
			return nil, &depfile.ParseError{Format: depfile.FormatCycloneDX, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
		}
		for _, c := range bom.Components {
			components = append(components, cdxComponent{c.Name, c.Version, c.Purl})
		}
	} else {
		var bom cdxBomXML
		if err := xml.Unmarshal(data, &bom); err != nil {
			return nil, &depfile.ParseError{Format: depfile.FormatCycloneDX, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
		}
		for _, c := range bom.Components {
			components = append(components, cdxComponent{c.Name, c.Version, c.Purl})
		}
	}

	var pkgs []depfile.Package
	for _, c := range components {
		if c.Purl != "" {
			if eco, name, version, ok := parsePurl(c.Purl); ok {
				pkgs = append(pkgs, depfile.Package{Ecosystem: eco, Name: name, Version: version})
			}
			continue // purl present but unmodeled ecosystem: skip with no fallback guess
		}
		if c.Name != "" && c.Version != "" {
			pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemUnknown, Name: c.Name, Version: c.Version})
		}
	}
	return depfile.Dedup(pkgs), nil
}

type cdxComponent struct {
	Name    string
	Version string
	Purl    string
}

var errCdxEmpty = cdxEmptyError{}

type cdxEmptyError struct{}

func (cdxEmptyError) Error() string { return "empty CycloneDX document" }
