package parsers

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatGradle, parseGradleLockfile)
}

// gradle.lockfile / gradle/dependency-locks/*.lockfile (v5+) lines look
// like:
//
//	group:artifact:version=compileClasspath,runtimeClasspath
//
// with a header comment block and an "empty=" sentinel line to ignore.
func parseGradleLockfile(data []byte) ([]depfile.Package, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var pkgs []depfile.Package
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "empty=") {
			continue
		}
		coord := line
		if eq := strings.Index(line, "="); eq >= 0 {
			coord = line[:eq]
		}
		parts := strings.Split(coord, ":")
		if len(parts) != 3 {
			continue
		}
		group, artifact, version := parts[0], parts[1], parts[2]
		if group == "" || artifact == "" || version == "" {
			continue
		}
		pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemMaven, Name: group + ":" + artifact, Version: version})
	}
	if err := scanner.Err(); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatGradle, Kind: depfile.ParseErrorTruncated, Offset: -1, Err: err}
	}
	return depfile.Dedup(pkgs), nil
}
