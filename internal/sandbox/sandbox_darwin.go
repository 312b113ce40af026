//go:build darwin

package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// platformRun on macOS shells out to sandbox-exec(1) with a generated
// Seatbelt profile, mirroring kcli's sandboxedCommand/BuildSandboxProfile
// pattern (internal/plugin/sandbox.go) of building a per-invocation profile
// file rather than hand-maintaining a static one.
func platformRun(ctx context.Context, cmd Command) (Result, error) {
	if !binaryAvailable("sandbox-exec") {
		if cmd.BypassIfUnavailable {
			return runUnsandboxed(ctx, cmd)
		}
		return Result{}, ErrSandboxUnavailable
	}

	profile, err := writeSeatbeltProfile(cmd.Permissions)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	defer os.Remove(profile)

	args := append([]string{"-f", profile, cmd.Path}, cmd.Args...)
	c := exec.CommandContext(ctx, "sandbox-exec", args...)
	c.Dir = cmd.Dir
	c.Env = sandboxEnv(cmd)

	return runPrepared(c, cmd.Stdio)
}

func writeSeatbeltProfile(p PermissionSet) (string, error) {
	var b bytes.Buffer
	b.WriteString("(version 1)\n(deny default)\n(allow process-fork)\n(allow process-exec)\n(allow signal (target self))\n")

	writeFileGrants(&b, "file-read*", p.EffectiveRead())
	writeFileGrants(&b, "file-write*", p.Write)

	if p.Net.All {
		b.WriteString("(allow network*)\n")
	} else if len(p.Net.Hosts) > 0 {
		for _, h := range p.Net.Hosts {
			fmt.Fprintf(&b, "(allow network-outbound (remote ip \"%s:*\"))\n", sanitizeProfileString(h))
		}
	}

	f, err := os.CreateTemp("", "phylum-sandbox-*.sb")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(b.Bytes()); err != nil {
		f.Close()
		return "", err
	}
	return f.Name(), f.Close()
}

func writeFileGrants(b *bytes.Buffer, rule string, grant PathGrant) {
	if grant.All {
		fmt.Fprintf(b, "(allow %s)\n", rule)
		return
	}
	for _, p := range grant.Paths {
		fmt.Fprintf(b, "(allow %s (subpath \"%s\"))\n", rule, sanitizeProfileString(expandHome(filepath.Clean(p))))
	}
}

func sanitizeProfileString(s string) string {
	return strings.NewReplacer(`"`, `\"`, "\\", "\\\\").Replace(s)
}

func detectCapabilities() Capabilities {
	return Capabilities{
		Platform:    "darwin",
		Available:   binaryAvailable("sandbox-exec"),
		SandboxExec: binaryAvailable("sandbox-exec"),
	}
}
