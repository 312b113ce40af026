// Package genlock implements the lockfile-generation pipeline (§4.3): given
// a manifest, resolve the matching package-manager invocation, run it under
// the sandbox, and hand the resulting lockfile to internal/depfile.
package genlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/phylum-dev/cli-go/internal/depfile"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

// ErrGenerationDisabled is returned when the caller set NoGeneration.
var ErrGenerationDisabled = errors.New("genlock: lockfile generation disabled")

// GeneratorMissingError reports that the ecosystem tool was not found on
// $PATH.
type GeneratorMissingError struct {
	Ecosystem depfile.Format
	Tool      string
}

func (e *GeneratorMissingError) Error() string {
	return fmt.Sprintf("genlock: generator %q for %s not found on $PATH", e.Tool, e.Ecosystem)
}

// LockfileGenerationFailedError carries both the package manager's stderr
// and a structured cause.
type LockfileGenerationFailedError struct {
	Ecosystem depfile.Format
	Stderr    string
	Underlying error
}

func (e *LockfileGenerationFailedError) Error() string {
	return fmt.Sprintf("genlock: %s generation failed: %v\n%s", e.Ecosystem, e.Underlying, e.Stderr)
}

func (e *LockfileGenerationFailedError) Unwrap() error { return e.Underlying }

// generatorSpec describes how to drive one ecosystem's package manager to
// produce a lockfile from its manifest.
type generatorSpec struct {
	tool           string
	args           func(manifestDir string) []string
	outputFile     string // relative to manifestDir; never stdout, per §9's open question
	outputFormat   depfile.Format
	cacheDirs      []string // additional read/write exceptions under ~, beyond the sandboxExceptionsV1 baseline
}

var generators = map[depfile.Format]generatorSpec{
	depfile.FormatNPM: {
		tool:         "npm",
		args:         func(string) []string { return []string{"install", "--package-lock-only"} },
		outputFile:   "package-lock.json",
		outputFormat: depfile.FormatNPM,
		cacheDirs:    []string{"~/.npm"},
	},
	depfile.FormatPip: {
		tool:         "pip-compile",
		args:         func(string) []string { return []string{"requirements.in", "-o", "requirements.txt"} },
		outputFile:   "requirements.txt",
		outputFormat: depfile.FormatPip,
		cacheDirs:    []string{"~/.cache/pip"},
	},
	depfile.FormatPipenv: {
		tool:         "pipenv",
		args:         func(string) []string { return []string{"lock"} },
		outputFile:   "Pipfile.lock",
		outputFormat: depfile.FormatPipenv,
		cacheDirs:    []string{"~/.cache/pipenv", "~/.cache/pip"},
	},
	depfile.FormatPoetry: {
		tool:         "poetry",
		args:         func(string) []string { return []string{"lock"} },
		outputFile:   "poetry.lock",
		outputFormat: depfile.FormatPoetry,
		cacheDirs:    []string{"~/.cache/pypoetry"},
	},
	depfile.FormatGem: {
		tool:         "bundle",
		args:         func(string) []string { return []string{"lock"} },
		outputFile:   "Gemfile.lock",
		outputFormat: depfile.FormatGem,
		cacheDirs:    []string{"~/.bundle"},
	},
	depfile.FormatGo: {
		tool:         "go",
		args:         func(string) []string { return []string{"mod", "tidy"} },
		outputFile:   "go.sum",
		outputFormat: depfile.FormatGo,
		cacheDirs:    []string{"~/go/pkg/mod", "~/.cache/go-build"},
	},
	depfile.FormatCargo: {
		tool:         "cargo",
		args:         func(string) []string { return []string{"generate-lockfile"} },
		outputFile:   "Cargo.lock",
		outputFormat: depfile.FormatCargo,
		cacheDirs:    []string{"~/.cargo"},
	},
	depfile.FormatGradle: {
		tool:         "gradle",
		args:         func(string) []string { return []string{"dependencies", "--write-locks"} },
		outputFile:   "gradle.lockfile",
		outputFormat: depfile.FormatGradle,
		cacheDirs:    []string{"~/.gradle"},
	},
}

// Options controls generation behavior.
type Options struct {
	NoGeneration bool // §4.3 step 1: fail closed with ErrGenerationDisabled
	SkipSandbox  bool // §4.3 step 6: documented-unsafe escape hatch, caller-requested only
}

var pathLookup sync.Map // tool name -> resolved path, cached per process (kcli's runner.ensureKubectlAvailable pattern)

// Generate drives the package manager for manifestFormat against the
// manifest at manifestPath and parses its resulting lockfile.
func Generate(ctx context.Context, manifestPath string, manifestFormat depfile.Format, opts Options) (*depfile.DependencyFile, error) {
	if opts.NoGeneration {
		return nil, ErrGenerationDisabled
	}

	spec, ok := generators[manifestFormat]
	if !ok {
		return nil, fmt.Errorf("genlock: no generator registered for format %q", manifestFormat)
	}

	toolPath, err := resolveTool(spec.tool)
	if err != nil {
		return nil, &GeneratorMissingError{Ecosystem: manifestFormat, Tool: spec.tool}
	}

	dir := filepath.Dir(manifestPath)
	perms := sandbox.PermissionSet{
		Read:  sandbox.PathGrant{Paths: []string{dir}},
		Write: sandbox.PathGrant{Paths: []string{dir}},
		Run:   sandbox.PathGrant{Paths: []string{toolPath}},
		Net:   sandbox.HostGrant{All: true},
	}
	for _, c := range spec.cacheDirs {
		perms.Read.Paths = append(perms.Read.Paths, c)
		perms.Write.Paths = append(perms.Write.Paths, c)
	}

	result, err := sandbox.Run(ctx, sandbox.Command{
		Path: toolPath,
		Args: spec.args(dir),
		Dir:  dir,
		Permissions: perms,
		Stdio: sandbox.StdioPiped,
		BypassIfUnavailable: opts.SkipSandbox,
	})
	if err != nil {
		return nil, &LockfileGenerationFailedError{Ecosystem: manifestFormat, Underlying: err}
	}
	if !result.Success() {
		return nil, &LockfileGenerationFailedError{
			Ecosystem:  manifestFormat,
			Stderr:     string(result.Stderr),
			Underlying: fmt.Errorf("exit status %d", result.ExitCode),
		}
	}

	outPath := filepath.Join(dir, spec.outputFile)
	data, err := os.ReadFile(outPath)
	if err != nil {
		// Generator stdout never contaminates downstream parsing (§4.3,
		// §9): a generator that only wrote to stdout leaves outPath
		// missing, which surfaces here as LockfileGenerationFailed.
		return nil, &LockfileGenerationFailedError{Ecosystem: manifestFormat, Underlying: fmt.Errorf("expected output file %s missing: %w", outPath, err)}
	}

	return depfile.Parse(outPath, spec.outputFormat, data, depfile.KindLockfile)
}

func resolveTool(name string) (string, error) {
	if v, ok := pathLookup.Load(name); ok {
		if v == "" {
			return "", os.ErrNotExist
		}
		return v.(string), nil
	}
	path, err := lookPath(name)
	if err != nil {
		pathLookup.Store(name, "")
		return "", err
	}
	pathLookup.Store(name, path)
	return path, nil
}
