package parsers

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatGo, parseGoModOrSum)
}

var goMinDirective = semver.MustParse("1.17.0")

// parseGoModOrSum handles both go.sum (module/version hash pair lines,
// each module typically appearing twice: "/go.mod" hash and module-zip
// hash) and go.mod ("require" blocks/lines). The two are distinguished by
// content: a go.mod has a "module " directive; a go.sum does not.
func parseGoModOrSum(data []byte) ([]depfile.Package, error) {
	if looksLikeGoMod(data) {
		return parseGoMod(data)
	}
	return parseGoSum(data)
}

func looksLikeGoMod(data []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if strings.HasPrefix(strings.TrimSpace(scanner.Text()), "module ") {
			return true
		}
	}
	return false
}

func parseGoMod(data []byte) ([]depfile.Package, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var pkgs []depfile.Package
	inRequireBlock := false
	sawGoDirective := false

	for scanner.Scan() {
		line := strings.TrimSpace(stripGoComment(scanner.Text()))
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "go "):
			sawGoDirective = true
			v, err := semver.NewVersion(strings.TrimSpace(strings.TrimPrefix(line, "go ")))
			if err == nil && v.LessThan(goMinDirective) {
				return nil, &depfile.ParseError{
					Format: depfile.FormatGo, Kind: depfile.ParseErrorUnsupported, Offset: -1,
					Err: errGoDirectiveTooOld,
				}
			}
		case line == "require (":
			inRequireBlock = true
		case inRequireBlock && line == ")":
			inRequireBlock = false
		case inRequireBlock:
			if p, ok := goModuleVersionLine(line); ok {
				pkgs = append(pkgs, p)
			}
		case strings.HasPrefix(line, "require "):
			if p, ok := goModuleVersionLine(strings.TrimPrefix(line, "require ")); ok {
				pkgs = append(pkgs, p)
			}
		}
	}
	if !sawGoDirective {
		return nil, &depfile.ParseError{Format: depfile.FormatGo, Kind: depfile.ParseErrorUnsupported, Offset: -1, Err: errGoDirectiveMissing}
	}
	if err := scanner.Err(); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatGo, Kind: depfile.ParseErrorTruncated, Offset: -1, Err: err}
	}
	return depfile.Dedup(pkgs), nil
}

func goModuleVersionLine(line string) (depfile.Package, bool) {
	line = strings.TrimSuffix(line, "// indirect")
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return depfile.Package{}, false
	}
	return depfile.Package{Ecosystem: depfile.EcosystemGolang, Name: fields[0], Version: fields[1]}, true
}

func stripGoComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

func parseGoSum(data []byte) ([]depfile.Package, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var pkgs []depfile.Package
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		name, version := fields[0], fields[1]
		version = strings.TrimSuffix(version, "/go.mod")
		pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemGolang, Name: name, Version: version})
	}
	if err := scanner.Err(); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatGo, Kind: depfile.ParseErrorTruncated, Offset: -1, Err: err}
	}
	return depfile.Dedup(pkgs), nil
}

var errGoDirectiveTooOld = goDirectiveError("go directive below required minimum 1.17")
var errGoDirectiveMissing = goDirectiveError("go.mod has no go directive")

type goDirectiveError string

func (e goDirectiveError) Error() string { return string(e) }
