package parsers

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatMvn, parseEffectivePom)
}

// effective-pom.xml, as produced by `mvn help:effective-pom`, is a (possibly
// multi-document, one per workspace module) XML stream of fully-resolved
// <dependency> elements under <dependencies>. Parsed non-UTF-8-tolerantly
// per §4.2's note by decoding through xml.Decoder's CharsetReader hook,
// which falls back to treating unknown charsets as raw bytes rather than
// failing the whole parse.
type mvnProject struct {
	Dependencies mvnDependencies `xml:"dependencies"`
}

type mvnDependencies struct {
	Dependency []mvnDependency `xml:"dependency"`
}

type mvnDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

func parseEffectivePom(data []byte) ([]depfile.Package, error) {
	var pkgs []depfile.Package

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(charset string, r io.Reader) (io.Reader, error) {
		return r, nil // tolerate declared-but-unrecognized charsets
	}
	dec.Strict = false

	for {
		var proj mvnProject
		err := dec.Decode(&proj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &depfile.ParseError{Format: depfile.FormatMvn, Kind: depfile.ParseErrorSyntax, Offset: -1, Err: err}
		}
		for _, d := range proj.Dependencies.Dependency {
			name := strings.TrimSpace(d.GroupID) + ":" + strings.TrimSpace(d.ArtifactID)
			ver := strings.TrimSpace(d.Version)
			if d.GroupID == "" || d.ArtifactID == "" || ver == "" {
				continue
			}
			pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemMaven, Name: name, Version: ver})
		}
	}
	return depfile.Dedup(pkgs), nil
}
