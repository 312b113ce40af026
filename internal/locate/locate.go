// Package locate walks a project tree to discover dependency files,
// honoring ignore files and the manifest/lockfile pairing rules of §4.4.
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/monochromegane/go-gitignore"
	"github.com/phylum-dev/cli-go/internal/depfile"
)

// Entry is a discovered dependency file, not yet parsed.
type Entry struct {
	Path   string
	Format depfile.Format
	Kind   depfile.Kind
}

// lockfileRules and manifestRules map an exact filename to its format and
// kind; matchLockfileRule and matchManifestRule also accept
// packages.*.lock.json and *.csproj by pattern. package.json maps to npm and
// pyproject.toml to poetry; no pip format is tried for pyproject.toml.
var lockfileRules = []rule{
	{"package-lock.json", depfile.FormatNPM, depfile.KindLockfile},
	{"npm-shrinkwrap.json", depfile.FormatNPM, depfile.KindLockfile},
	{"yarn.lock", depfile.FormatYarn, depfile.KindLockfile},
	{"pnpm-lock.yaml", depfile.FormatPnpm, depfile.KindLockfile},
	{"Pipfile.lock", depfile.FormatPipenv, depfile.KindLockfile},
	{"poetry.lock", depfile.FormatPoetry, depfile.KindLockfile},
	{"Gemfile.lock", depfile.FormatGem, depfile.KindLockfile},
	{"packages.lock.json", depfile.FormatNugetLock, depfile.KindLockfile},
	{"gradle.lockfile", depfile.FormatGradle, depfile.KindLockfile},
	{"go.sum", depfile.FormatGo, depfile.KindLockfile},
	{"Cargo.lock", depfile.FormatCargo, depfile.KindLockfile},
}

var manifestRules = []rule{
	{"package.json", depfile.FormatNPM, depfile.KindManifest},
	{"requirements.txt", depfile.FormatPip, depfile.KindManifest}, // lockifest: tried as lockfile first (§4.2)
	{"requirements.in", depfile.FormatPip, depfile.KindManifest},
	{"Pipfile", depfile.FormatPipenv, depfile.KindManifest},
	{"pyproject.toml", depfile.FormatPoetry, depfile.KindManifest},
	{"Gemfile", depfile.FormatGem, depfile.KindManifest},
	{"go.mod", depfile.FormatGo, depfile.KindManifest},
	{"Cargo.toml", depfile.FormatCargo, depfile.KindManifest},
	{"build.gradle", depfile.FormatGradle, depfile.KindManifest},
	{"build.gradle.kts", depfile.FormatGradle, depfile.KindManifest},
	{"pom.xml", depfile.FormatMvn, depfile.KindManifest},
}

type rule struct {
	filename string
	format   depfile.Format
	kind     depfile.Kind
}

// Walk discovers dependency files under root, honoring .gitignore/.ignore
// (§4.4 step 2) and skipping any manifest whose format is satisfied by a
// lockfile in the same directory or an ancestor. Subdirectories are still
// walked, and lockfiles found there are reported even when an ancestor
// already produced a lockfile of the same format.
func Walk(root string) ([]Entry, error) {
	var entries []Entry
	producedFormats := map[string]map[depfile.Format]bool{} // dir -> formats satisfied by an ancestor

	var walk func(dir string, ignore gitignore.IgnoreMatcher, satisfiedByAncestor map[depfile.Format]bool) error
	walk = func(dir string, parentIgnore gitignore.IgnoreMatcher, satisfiedByAncestor map[depfile.Format]bool) error {
		ignore := parentIgnore
		for _, name := range []string{".gitignore", ".ignore"} {
			p := filepath.Join(dir, name)
			if m, err := gitignore.NewGitIgnore(p); err == nil {
				ignore = m
			}
		}

		children, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })

		satisfiedHere := cloneFormatSet(satisfiedByAncestor)
		var dirLockfiles []Entry
		var dirManifests []Entry

		for _, c := range children {
			name := c.Name()
			full := filepath.Join(dir, name)
			if c.IsDir() {
				continue
			}
			if r, ok := matchLockfileRule(name); ok {
				dirLockfiles = append(dirLockfiles, Entry{Path: full, Format: r.format, Kind: r.kind})
				satisfiedHere[r.format] = true
			} else if r, ok := matchManifestRule(name); ok {
				dirManifests = append(dirManifests, Entry{Path: full, Format: r.format, Kind: r.kind})
			}
		}

		entries = append(entries, dirLockfiles...)
		for _, m := range dirManifests {
			if lockfileSatisfies(satisfiedHere, m.Format) {
				continue // a corresponding lockfile already exists here or in an ancestor
			}
			entries = append(entries, m)
		}
		producedFormats[dir] = satisfiedHere

		for _, c := range children {
			if !c.IsDir() {
				continue
			}
			name := c.Name()
			if name == ".git" || strings.HasPrefix(name, ".") && name != "." {
				continue
			}
			full := filepath.Join(dir, name)
			if ignore != nil && ignore.Match(full, true) {
				continue
			}
			if err := walk(full, ignore, satisfiedHere); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, nil, map[depfile.Format]bool{}); err != nil {
		return nil, err
	}
	return entries, nil
}

// lockfileSatisfies reports whether any format present in satisfied pairs
// with the given manifest format per formatsPair's broader pairing rules
// (e.g. a yarn.lock or pnpm-lock.yaml satisfies a package.json manifest).
func lockfileSatisfies(satisfied map[depfile.Format]bool, manifest depfile.Format) bool {
	for f, ok := range satisfied {
		if ok && formatsPair(manifest, f) {
			return true
		}
	}
	return false
}

func cloneFormatSet(m map[depfile.Format]bool) map[depfile.Format]bool {
	out := make(map[depfile.Format]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func matchLockfileRule(name string) (rule, bool) {
	for _, r := range lockfileRules {
		if r.filename == name {
			return r, true
		}
	}
	if strings.HasPrefix(name, "packages.") && strings.HasSuffix(name, ".lock.json") {
		return rule{name, depfile.FormatNugetLock, depfile.KindLockfile}, true
	}
	return rule{}, false
}

func matchManifestRule(name string) (rule, bool) {
	for _, r := range manifestRules {
		if r.filename == name {
			return r, true
		}
	}
	if strings.HasSuffix(name, ".csproj") {
		return rule{name, depfile.FormatMSBuild, depfile.KindManifest}, true
	}
	return rule{}, false
}

// IdentifyFile classifies a single path by filename against the lockfile
// and manifest rule tables, for callers (extruntime's parseDependencyFile)
// that already know which file they want rather than walking a tree.
func IdentifyFile(path string) (Entry, error) {
	name := filepath.Base(path)
	if r, ok := matchLockfileRule(name); ok {
		return Entry{Path: path, Format: r.format, Kind: r.kind}, nil
	}
	if r, ok := matchManifestRule(name); ok {
		return Entry{Path: path, Format: r.format, Kind: r.kind}, nil
	}
	return Entry{}, fmt.Errorf("locate: %s does not match any known dependency file format", name)
}

// PairedLockfile returns the sibling lockfile path for a manifest, if one
// exists in the same directory, implementing the manifest↔lockfile
// preference rule (§4.4): when present, the lockfile is parsed directly
// instead of the manifest, unless an explicit format override is given.
func PairedLockfile(manifestPath string, manifestFormat depfile.Format) (string, depfile.Format, bool) {
	dir := filepath.Dir(manifestPath)
	for _, r := range lockfileRules {
		if formatsPair(manifestFormat, r.format) {
			candidate := filepath.Join(dir, r.filename)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, r.format, true
			}
		}
	}
	return "", "", false
}

func formatsPair(manifest, lockfile depfile.Format) bool {
	pairs := map[depfile.Format][]depfile.Format{
		depfile.FormatNPM:    {depfile.FormatNPM, depfile.FormatYarn, depfile.FormatPnpm},
		depfile.FormatPip:    {depfile.FormatPipenv, depfile.FormatPoetry},
		depfile.FormatPipenv: {depfile.FormatPipenv},
		depfile.FormatPoetry: {depfile.FormatPoetry},
		depfile.FormatGem:    {depfile.FormatGem},
		depfile.FormatGo:     {depfile.FormatGo},
		depfile.FormatCargo:  {depfile.FormatCargo},
		depfile.FormatGradle: {depfile.FormatGradle},
	}
	for _, candidate := range pairs[manifest] {
		if candidate == lockfile {
			return true
		}
	}
	return false
}
