package parsers

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

func init() {
	depfile.Register(depfile.FormatYarn, parseYarnLock)
}

// parseYarnLock handles both yarn.lock v1 ("# yarn lockfile v1" header,
// unindented block headers) and the Berry (v2+) flat "key:" / "version:"
// shape, plus patched/http(s)/ssh resolvers and aliases
// ("foo@npm:bar@^1.0.0, foo@^1.0.0:").
func parseYarnLock(data []byte) ([]depfile.Package, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var pkgs []depfile.Package
	var currentNames []string
	var currentVersion string
	lineNo := 0

	flush := func() {
		if currentVersion == "" {
			currentNames = nil
			return
		}
		for _, spec := range currentNames {
			name := yarnSpecName(spec)
			if name == "" {
				continue
			}
			pkgs = append(pkgs, depfile.Package{Ecosystem: depfile.EcosystemNPM, Name: name, Version: currentVersion})
		}
		currentNames = nil
		currentVersion = ""
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" || strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			// New block header: flush the previous one first.
			flush()
			header := strings.TrimSuffix(strings.TrimSpace(trimmed), ":")
			// Berry's "__metadata:" block describes the lockfile, not a package.
			if header == "" || header == "__metadata" {
				continue
			}
			for _, spec := range splitYarnSpecs(header) {
				currentNames = append(currentNames, spec)
			}
			continue
		}
		body := strings.TrimSpace(trimmed)
		if v, ok := yarnField(body, "version"); ok {
			currentVersion = v
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, &depfile.ParseError{Format: depfile.FormatYarn, Kind: depfile.ParseErrorTruncated, Offset: -1, Locator: "line " + itoa(int64(lineNo)), Err: err}
	}
	return depfile.Dedup(pkgs), nil
}

// splitYarnSpecs splits a comma-separated header like
// `"foo@npm:1.0.0", foo@^1.0.0` into individual specs, respecting quotes.
func splitYarnSpecs(header string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range header {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, strings.TrimSpace(cur.String()))
	}
	return out
}

// yarnSpecName extracts the package name from a single resolver spec,
// handling scoped names ("@scope/pkg@^1.0.0"), aliases
// ("foo@npm:bar@^1.0.0" -> "bar" is resolved via the version field, the name
// here is the registry key "foo" collapsed to the alias target's own name
// when present; a plain "foo@npm:^1.0.0" spec keeps "foo"), and
// patched/http(s)/ssh resolvers (keep the bare name).
func yarnSpecName(spec string) string {
	spec = strings.Trim(spec, "\"")
	if idx := strings.Index(spec, "@npm:"); idx > 0 {
		rest := spec[idx+len("@npm:"):]
		if target := yarnBareName(rest); target != rest {
			return target
		}
		return yarnBareName(spec[:idx])
	}
	return yarnBareName(spec)
}

func yarnBareName(spec string) string {
	if strings.HasPrefix(spec, "@") {
		// scoped: @scope/name@version
		secondAt := strings.Index(spec[1:], "@")
		if secondAt < 0 {
			return spec
		}
		return spec[:secondAt+1]
	}
	at := strings.Index(spec, "@")
	if at <= 0 {
		return spec
	}
	return spec[:at]
}

// yarnField recognizes both the v1 "key "value"" space-quoted form and
// Berry (v2+)'s "key: value" colon form.
func yarnField(line, key string) (string, bool) {
	var v string
	switch {
	case strings.HasPrefix(line, key+" "):
		v = strings.TrimSpace(strings.TrimPrefix(line, key+" "))
	case strings.HasPrefix(line, key+":"):
		v = strings.TrimSpace(strings.TrimPrefix(line, key+":"))
	default:
		return "", false
	}
	v = strings.Trim(v, "\"")
	return v, true
}
