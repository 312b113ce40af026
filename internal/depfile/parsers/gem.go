package parsers

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatGem, parseGemfileLock)
}

// parseGemfileLock reads the "specs:" block of the GEM section of a
// Gemfile.lock. Entries look like:
//
//	GEM
//	  remote: https://rubygems.org/
//	  specs:
//	    rack (2.2.3)
//	    rake (13.0.6)
//
// Dependencies without a parenthesized version (listed only in the top
// "DEPENDENCIES" section) are tolerated by simply not emitting them — the
// GEM specs: block is the source of truth for resolved versions.
func parseGemfileLock(data []byte) ([]depfile.Package, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var pkgs []depfile.Package
	inGemSection := false
	inSpecs := false

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))

		switch {
		case indent == 0:
			inGemSection = trimmed == "GEM"
			inSpecs = false
			continue
		case inGemSection && indent == 2 && strings.TrimSpace(trimmed) == "specs:":
			inSpecs = true
			continue
		case inGemSection && indent == 2:
			inSpecs = false
			continue
		}

		if !inGemSection || !inSpecs {
			continue
		}
		// Gem spec lines are indented 4 for top-level gems, 6 for their
		// own nested dependency lines; only 4-space entries are
		// directly-versioned packages we record here.
		if indent != 4 {
			continue
		}
		name, version, ok := gemParseSpecLine(strings.TrimSpace(trimmed))
		if !ok {
			continue
		}
		pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemRubyGems, Name: name, Version: version})
	}
	if err := scanner.Err(); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatGem, Kind: depfile.ParseErrorTruncated, Offset: -1, Err: err}
	}
	return depfile.Dedup(pkgs), nil
}

func gemParseSpecLine(line string) (name, version string, ok bool) {
	open := strings.Index(line, "(")
	if open < 0 {
		// No version recorded for this dependency; tolerated, not emitted.
		return "", "", false
	}
	close := strings.Index(line, ")")
	if close < open {
		return "", "", false
	}
	name = strings.TrimSpace(line[:open])
	version = strings.TrimSpace(line[open+1 : close])
	if name == "" || version == "" {
		return "", "", false
	}
	return name, version, true
}
