// Package sandbox provides OS-enforced confinement of a child process's
// filesystem, network, execute, and environment access (§4.1). Linux uses
// user/mount/network namespaces set up by bwrap(1) or unshare(1), with no
// seccomp filter; macOS uses sandbox-exec(1) profiles; all other platforms
// report SandboxUnavailable.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathGrant is the shape shared by read/write/run permission fields: either
// "all paths" (All=true), or an explicit list of absolute/"~/"-prefixed
// patterns. The zero value denies everything, matching the fail-closed
// default of §4.1.
type PathGrant struct {
	All   bool
	Paths []string
}

// Allows reports whether path is covered by the grant. A directory grant
// implies all descendants (§3). Matching is exact-path or exact-ancestor,
// never substring: "ls" does not match "/usr/bin/ls".
func (g PathGrant) Allows(path string) bool {
	if g.All {
		return true
	}
	clean := filepath.Clean(path)
	for _, p := range g.Paths {
		if pathOrAncestor(expandHome(p), clean) {
			return true
		}
	}
	return false
}

func pathOrAncestor(grantPath, target string) bool {
	grantPath = filepath.Clean(grantPath)
	if grantPath == target {
		return true
	}
	rel, err := filepath.Rel(grantPath, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// HostGrant mirrors PathGrant for the net permission, whose elements are
// host names rather than paths. Allows matches a host by exact string
// equality; wildcard patterns are not expanded.
type HostGrant struct {
	All   bool
	Hosts []string
}

func (g HostGrant) Allows(host string) bool {
	if g.All {
		return true
	}
	for _, h := range g.Hosts {
		if h == host {
			return true
		}
	}
	return false
}

// EnvGrant mirrors PathGrant for the env permission.
type EnvGrant struct {
	All  bool
	Vars []string
}

func (g EnvGrant) Allows(name string) bool {
	if g.All {
		return true
	}
	for _, v := range g.Vars {
		if v == name {
			return true
		}
	}
	return false
}

// PermissionSet is the five-field grant described in §3. Run granting a
// path implicitly grants Read on it (enforced by Resolved, below, not by
// mutating Run itself).
type PermissionSet struct {
	Read   PathGrant
	Write  PathGrant
	Run    PathGrant
	Net    HostGrant
	Env    EnvGrant
	Strict bool // disables default portability exceptions when true
}

// EffectiveRead returns the read grant a sandboxed process actually gets:
// the declared Read grant unioned with every path Run grants execute on
// (§3: "Granting run X implicitly grants read X").
func (p PermissionSet) EffectiveRead() PathGrant {
	if p.Read.All || p.Run.All {
		return PathGrant{All: p.Read.All || p.Run.All}
	}
	return PathGrant{Paths: append(append([]string{}, p.Read.Paths...), p.Run.Paths...)}
}

// Subset reports whether p is permission-monotone under r: every path/host/
// env/run grant in p is contained in r. Used to enforce §8's "permission
// monotonicity" property for runSandboxed requests bounded by an extension's
// own effective permission set.
func (p PermissionSet) Subset(r PermissionSet) bool {
	return pathGrantSubset(p.Read, r.Read) &&
		pathGrantSubset(p.Write, r.Write) &&
		pathGrantSubset(p.Run, r.Run) &&
		hostGrantSubset(p.Net, r.Net) &&
		envGrantSubset(p.Env, r.Env)
}

func pathGrantSubset(p, r PathGrant) bool {
	if p.All {
		return r.All
	}
	if r.All {
		return true
	}
	for _, path := range p.Paths {
		if !r.Allows(path) {
			return false
		}
	}
	return true
}

func hostGrantSubset(p, r HostGrant) bool {
	if p.All {
		return r.All
	}
	if r.All {
		return true
	}
	for _, h := range p.Hosts {
		if !r.Allows(h) {
			return false
		}
	}
	return true
}

func envGrantSubset(p, r EnvGrant) bool {
	if p.All {
		return r.All
	}
	if r.All {
		return true
	}
	for _, v := range p.Vars {
		if !r.Allows(v) {
			return false
		}
	}
	return true
}

// WithExceptions returns a copy of p with the versioned default portability
// exceptions (sandboxExceptionsV1) unioned in, unless Strict is set (§4.1).
func (p PermissionSet) WithExceptions() PermissionSet {
	if p.Strict {
		return p
	}
	out := p
	if !out.Read.All {
		out.Read.Paths = append(append([]string{}, out.Read.Paths...), sandboxExceptionsV1.read...)
		out.Read.Paths = append(out.Read.Paths, pathDirs()...)
	}
	if !out.Write.All {
		out.Write.Paths = append(append([]string{}, out.Write.Paths...), sandboxExceptionsV1.write...)
	}
	return out
}

// pathDirs returns the directories on $PATH, the "executable discovery"
// default-read exception from §4.1's table.
func pathDirs() []string {
	return strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
}

// StdioMode selects how a child's standard streams are wired (§4.1).
type StdioMode int

const (
	StdioInherit StdioMode = iota
	StdioNull
	StdioPiped
)

// Command describes a child process to run under the sandbox.
type Command struct {
	Path        string // resolved executable path; must match Permissions.Run exactly, no substring matching
	Args        []string
	Dir         string
	Env         []string // additional environment beyond what Permissions.Env admits
	Permissions PermissionSet
	Stdio       StdioMode
	// BypassIfUnavailable allows the caller (only genlock's explicit
	// skip-sandbox escape hatch) to run unsandboxed when the platform
	// cannot sandbox at all. Never set by extruntime's runSandboxed path.
	BypassIfUnavailable bool
}

// Result is what the sandbox returns for a completed or failed run.
type Result struct {
	ExitCode int
	Signal   string // non-empty if the child was killed by a signal
	Stdout   []byte
	Stderr   []byte
}

// Success reports a clean zero exit with no signal.
func (r Result) Success() bool {
	return r.Signal == "" && r.ExitCode == 0
}

// Failure kinds, per §4.1 and §7.
var (
	ErrSandboxUnavailable = errors.New("sandbox: not available on this platform")
	ErrSpawnFailed        = errors.New("sandbox: failed to spawn child process")
)

// PermissionDeniedError reports that the permission set does not admit the
// requested command.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string { return "sandbox: permission denied: " + e.Reason }

// ChildFailedError wraps a non-zero exit; it is reported, not treated as a
// Go error in the traditional sense, but callers that want to distinguish
// "ran and failed" from "couldn't run" can type-assert for it.
type ChildFailedError struct {
	Result Result
}

func (e *ChildFailedError) Error() string {
	if e.Result.Signal != "" {
		return fmt.Sprintf("sandbox: child killed by signal %s", e.Result.Signal)
	}
	return fmt.Sprintf("sandbox: child exited %d", e.Result.ExitCode)
}

// checkRunPermission enforces §4.1's exact-match rule for run grants: the
// resolved path must appear verbatim in the Run grant (or Run must be
// All=true); "ls" does not satisfy a grant of "/usr/bin/ls".
func checkRunPermission(cmd Command) error {
	perms := cmd.Permissions
	if perms.Run.All {
		return nil
	}
	for _, allowed := range perms.Run.Paths {
		if expandHome(allowed) == filepath.Clean(cmd.Path) {
			return nil
		}
	}
	return &PermissionDeniedError{Reason: fmt.Sprintf("%q is not in the run permission set", cmd.Path)}
}

// Run executes cmd under the platform sandbox. It is the single entry point
// used by both internal/genlock (lockfile generation) and
// internal/extruntime's runSandboxed host API.
func Run(ctx context.Context, cmd Command) (Result, error) {
	if err := checkRunPermission(cmd); err != nil {
		return Result{}, err
	}
	cmd.Permissions = cmd.Permissions.WithExceptions()
	return platformRun(ctx, cmd)
}
