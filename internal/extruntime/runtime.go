// Package extruntime embeds the JavaScript engine extensions run in and
// exposes the Phylum.* host API to scripts (§4.8). It is the only place in
// the program where a spawned child's permission set is bounded by another
// process's permission set rather than by a fixed sandbox.PermissionSet, so
// runSandboxed gets special treatment below.
package extruntime

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dop251/goja"

	"github.com/phylum-dev/cli-go/internal/apiclient"
	"github.com/phylum-dev/cli-go/internal/depfile"
	"github.com/phylum-dev/cli-go/internal/genlock"
	"github.com/phylum-dev/cli-go/internal/locate"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

// ScriptError preserves the script's file and line on an uncaught exception
// (§4.8 step 5's "Terminate" diagnostic requirement).
type ScriptError struct {
	File string
	Line int
	Err  error
}

func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}
func (e *ScriptError) Unwrap() error { return e.Err }

// ProjectContext carries the extension's notion of "current project",
// resolved by the caller from .phylum_project (internal/projectfile) before
// the engine starts.
type ProjectContext struct {
	ID    string
	Name  string
	Group string
	Org   string
}

// Config bundles everything the host API needs to service calls.
type Config struct {
	Client         *apiclient.Client
	Permissions    sandbox.PermissionSet
	Project        ProjectContext
	AccessToken    func(ctx context.Context) (string, error)
	RefreshToken   func(ctx context.Context) (string, error)
	EntryDir       string // directory the extension's entry module lives in, for relative path resolution
}

// Engine wraps a single-use goja.Runtime configured with the Phylum host
// API, exposed as the single global `Phylum` object.
type Engine struct {
	vm  *goja.Runtime
	cfg Config
	ctx context.Context
}

// New builds an engine and installs the host API as the `Phylum` global.
// No module loader is set up, so scripts cannot import "phylum:api".
func New(ctx context.Context, cfg Config) *Engine {
	vm := goja.New()
	e := &Engine{vm: vm, cfg: cfg, ctx: ctx}
	api := e.buildHostAPI()
	vm.Set("Phylum", api)
	vm.Set("console", e.buildConsole())
	return e
}

// RunFile loads and executes the entry module, returning the script's exit
// code on normal completion. An uncaught exception is reported as a
// *ScriptError that preserves file:line (§4.8 step 5).
func (e *Engine) RunFile(path string) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	prog, err := goja.Compile(path, string(src), false)
	if err != nil {
		return 0, &ScriptError{File: path, Err: err}
	}
	_, err = e.vm.RunProgram(prog)
	if err == nil {
		return 0, nil
	}
	if exc, ok := err.(*goja.Exception); ok {
		// goja folds file:line into the exception's own Error() string; the
		// entry module's own path is always a safe fallback label.
		return 1, &ScriptError{File: path, Err: fmt.Errorf("%s", exc.Error())}
	}
	return 1, &ScriptError{File: path, Err: err}
}

func (e *Engine) buildConsole() map[string]any {
	log := func(args ...goja.Value) {
		parts := make([]any, 0, len(args))
		for _, a := range args {
			parts = append(parts, a.String())
		}
		fmt.Fprintln(os.Stderr, parts...)
	}
	return map[string]any{
		"log":   log,
		"error": log,
		"warn":  log,
	}
}

// requireNet and requireRead are the permission gates evaluated before host
// calls that reach the network or read files (§4.8 step 4). permissions(),
// getCurrentProject, getAccessToken and getRefreshToken call neither.
func (e *Engine) requireNet(host string) error {
	// Callers pass the API base URL; net grants list bare host names.
	if u, err := url.Parse(host); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	if !e.cfg.Permissions.Net.Allows(host) {
		return &sandbox.PermissionDeniedError{Reason: fmt.Sprintf("net access to %s not granted", host)}
	}
	return nil
}

func (e *Engine) requireRead(path string) error {
	if !e.cfg.Permissions.EffectiveRead().Allows(path) {
		return &sandbox.PermissionDeniedError{Reason: fmt.Sprintf("read access to %s not granted", path)}
	}
	return nil
}

func (e *Engine) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.cfg.EntryDir, p)
}

// parseDependencyFile backs Phylum.parseDependencyFile: locate the format if
// unspecified; for a manifest, parse an existing sibling lockfile if there is
// one, else use the manifest itself when it parses as a lockfile
// (lockifest), else generate a lockfile when generateLockfiles is set.
// internal/orchestrate tries the lockifest parse before the sibling lockfile.
func (e *Engine) parseDependencyFile(path, format string, generateLockfiles, sandboxGeneration bool) (*depfile.DependencyFile, error) {
	abs := e.resolvePath(path)
	if err := e.requireRead(abs); err != nil {
		return nil, err
	}

	var f depfile.Format
	var kind depfile.Kind
	if format != "" {
		f = depfile.Format(format)
		kind = depfile.KindLockfile
	} else {
		entry, err := locate.IdentifyFile(abs)
		if err != nil {
			return nil, err
		}
		f, kind = entry.Format, entry.Kind
	}

	if pairedPath, pairedFormat, ok := locate.PairedLockfile(abs, f); ok && kind == depfile.KindManifest {
		data, err := os.ReadFile(pairedPath)
		if err != nil {
			return nil, err
		}
		return depfile.Parse(pairedPath, pairedFormat, data, depfile.KindLockfile)
	}

	if kind == depfile.KindManifest && generateLockfiles {
		if data, err := os.ReadFile(abs); err == nil {
			if df, err := depfile.Parse(abs, f, data, kind); err == nil {
				return df, nil
			}
		}
		opts := genlock.Options{SkipSandbox: !sandboxGeneration}
		return genlock.Generate(e.ctx, abs, f, opts)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return depfile.Parse(abs, f, data, kind)
}
