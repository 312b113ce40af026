//go:build linux

package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// platformRun on Linux isolates the child with user+mount+network
// namespaces. The primary mechanism is bubblewrap (bwrap), which already
// combines namespace setup and bind-mount realization of filesystem
// exceptions in one invocation (no seccomp filter is passed to it) — grounded on
// xadnavyaai-vectraguard's internal/sandbox/namespace/bubblewrap.go. When
// bwrap is absent, we fall back to unshare(1) with a shell wrapper that
// performs the bind mounts itself, mirroring kcli's
// sandbox_linux.go/roWrapperScript pattern of shelling out to unshare
// rather than making raw namespace syscalls directly from the long-lived Go
// process.
func platformRun(ctx context.Context, cmd Command) (Result, error) {
	switch {
	case binaryAvailable("bwrap"):
		return runWithBubblewrap(ctx, cmd)
	case binaryAvailable("unshare"):
		return runWithUnshare(ctx, cmd)
	default:
		if cmd.BypassIfUnavailable {
			return runUnsandboxed(ctx, cmd)
		}
		return Result{}, ErrSandboxUnavailable
	}
}

func runWithBubblewrap(ctx context.Context, cmd Command) (Result, error) {
	args := []string{
		"--die-with-parent",
		"--new-session",
		"--unshare-user-try",
		"--unshare-pid",
		"--unshare-ipc",
		"--unshare-uts",
		"--proc", "/proc",
		"--dev", "/dev",
	}

	if !cmd.Permissions.Net.All {
		args = append(args, "--unshare-net")
	}

	read := cmd.Permissions.EffectiveRead()
	if read.All {
		args = append(args, "--ro-bind", "/", "/")
	} else {
		for _, p := range read.Paths {
			p = expandHome(p)
			if _, err := os.Stat(p); err != nil {
				continue // bwrap errors on a missing bind source; skip rather than fail the whole run
			}
			args = append(args, "--ro-bind", p, p)
		}
	}
	for _, p := range cmd.Permissions.Write.Paths {
		p = expandHome(p)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		args = append(args, "--bind", p, p)
	}
	if cmd.Dir != "" {
		args = append(args, "--chdir", cmd.Dir)
	}

	args = append(args, "--")
	args = append(args, cmd.Path)
	args = append(args, cmd.Args...)

	c := exec.CommandContext(ctx, "bwrap", args...)
	c.Dir = cmd.Dir
	c.Env = sandboxEnv(cmd)
	return runPrepared(c, cmd.Stdio)
}

// runWithUnshare is the fallback when bwrap is unavailable. It creates
// fresh user/mount/net namespaces via unshare(1) and, inside them, a small
// shell script remounts the allowed write paths read-write and the rest of
// "/" read-only before exec-ing the target — the same "wrapper script that
// remounts before exec" shape as kcli's ensureROWrapperScript, generalized
// from a single fixed config directory to an arbitrary permission set.
func runWithUnshare(ctx context.Context, cmd Command) (Result, error) {
	script := buildUnshareWrapperScript(cmd)
	unshareArgs := []string{"--user", "--map-root-user", "--mount", "--fork"}
	if !cmd.Permissions.Net.All {
		unshareArgs = append(unshareArgs, "--net")
	}
	unshareArgs = append(unshareArgs, "/bin/sh", "-c", script)

	c := exec.CommandContext(ctx, "unshare", unshareArgs...)
	c.Dir = cmd.Dir
	c.Env = sandboxEnv(cmd)
	return runPrepared(c, cmd.Stdio)
}

func buildUnshareWrapperScript(cmd Command) string {
	var b strings.Builder
	b.WriteString("set -e\n")
	read := cmd.Permissions.EffectiveRead()
	if !read.All {
		b.WriteString("mount --make-rprivate / 2>/dev/null || true\n")
		for _, p := range read.Paths {
			p = filepath.Clean(expandHome(p))
			fmt.Fprintf(&b, "mount --bind %s %s 2>/dev/null && mount -o remount,bind,ro %s 2>/dev/null || true\n", quoteShellArg(p), quoteShellArg(p), quoteShellArg(p))
		}
	}
	for _, p := range cmd.Permissions.Write.Paths {
		p = filepath.Clean(expandHome(p))
		fmt.Fprintf(&b, "mount --bind %s %s 2>/dev/null || true\n", quoteShellArg(p), quoteShellArg(p))
	}
	if !cmd.Permissions.Write.All {
		b.WriteString("mount -o remount,bind,ro / 2>/dev/null || true\n")
	}
	b.WriteString("exec ")
	b.WriteString(quoteShellArg(cmd.Path))
	for _, a := range cmd.Args {
		b.WriteString(" ")
		b.WriteString(quoteShellArg(a))
	}
	b.WriteString("\n")
	return b.String()
}

func detectCapabilities() Capabilities {
	return Capabilities{
		Platform:           "linux",
		Available:          binaryAvailable("bwrap") || binaryAvailable("unshare"),
		Bubblewrap:         binaryAvailable("bwrap"),
		Unshare:            binaryAvailable("unshare"),
		UnprivilegedUserNS: unprivilegedUserNamespacesEnabled(),
	}
}

func unprivilegedUserNamespacesEnabled() bool {
	data, err := os.ReadFile("/proc/sys/kernel/unprivileged_userns_clone")
	if err != nil {
		// Absent on distros (e.g. most non-Debian-derived kernels) that
		// don't gate userns behind this sysctl at all; treat as enabled.
		return true
	}
	return strings.TrimSpace(string(data)) != "0"
}
