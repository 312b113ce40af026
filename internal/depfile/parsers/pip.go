package parsers

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatPip, parsePipRequirements)
}

// parsePipRequirements implements the "lockifest" half of §4.2/§8 scenario
// 2: requirements.txt is nominally a manifest but is first attempted as a
// lockfile. Only lines that are an exact pin (`name==version`) count as
// resolved packages; any requirement that isn't an exact pin (a bare range
// like "requests>=2.0" or a VCS/URL requirement) means the
// file cannot be treated as fully pinned, and the whole parse fails so the
// caller falls through to lockfile generation instead of silently emitting
// a partial list.
func parsePipRequirements(data []byte) ([]depfile.Package, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var pkgs []depfile.Package
	var lineNo int64
	var pending string

	flushLine := func(raw string) error {
		line := stripPipComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		if strings.HasPrefix(line, "-") {
			// Option line (-r, -e, --hash, --index-url, ...): not a
			// package requirement. "-e"/"-r" recursive/editable
			// requirements are out of scope for pure parsing.
			return nil
		}
		name, version, ok := pipExactPin(line)
		if !ok {
			return &depfile.ParseError{
				Format: depfile.FormatPip, Kind: depfile.ParseErrorUnsupported,
				Offset: -1, Locator: "line " + itoa(lineNo),
				Err: errPipNotPinned,
			}
		}
		pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemPyPI, Name: name, Version: version})
		return nil
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		// Backslash line continuation.
		if strings.HasSuffix(strings.TrimRight(raw, " \t"), "\\") {
			pending += strings.TrimSuffix(strings.TrimRight(raw, " \t"), "\\")
			continue
		}
		full := pending + raw
		pending = ""
		if err := flushLine(full); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatPip, Kind: depfile.ParseErrorTruncated, Offset: -1, Locator: "line " + itoa(lineNo), Err: err}
	}
	return depfile.Dedup(pkgs), nil
}

func stripPipComment(line string) string {
	if i := strings.Index(line, " #"); i >= 0 {
		return line[:i]
	}
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return ""
	}
	return line
}

// pipExactPin returns (name, version, true) only for a bare "name==version"
// requirement (optionally carrying "--hash=..." markers or extras, which do
// not themselves disqualify an exact pin).
func pipExactPin(line string) (string, string, bool) {
	// Strip trailing --hash=... and other markers separated by spaces.
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", "", false
	}
	spec := fields[0]
	// Drop extras: name[extra1,extra2]==version
	if i := strings.Index(spec, "["); i >= 0 {
		if j := strings.Index(spec, "]"); j > i {
			spec = spec[:i] + spec[j+1:]
		}
	}
	if !strings.Contains(spec, "==") {
		return "", "", false
	}
	// Reject anything with additional constraint operators indicating a
	// range rather than a single exact pin (e.g. "foo==1.0,!=1.1").
	if strings.ContainsAny(spec, "<>") || strings.Contains(spec, "!=") {
		return "", "", false
	}
	parts := strings.SplitN(spec, "==", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

var errPipNotPinned = pipNotPinnedError{}

type pipNotPinnedError struct{}

func (pipNotPinnedError) Error() string {
	return "requirement is not an exact pin (==); file is a manifest, not a lockfile"
}
