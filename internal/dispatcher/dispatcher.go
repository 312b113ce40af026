// Package dispatcher resolves a command name to either a built-in Cobra
// command or an installed extension (§4.9). Built-ins always win; a
// conflicting extension install is rejected up front by internal/extreg, so
// this runtime check is only a safety net.
package dispatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phylum-dev/cli-go/internal/extreg"
	"github.com/phylum-dev/cli-go/internal/extruntime"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

// Resolution describes how a command name should be handled.
type Resolution int

const (
	ResolutionBuiltin Resolution = iota
	ResolutionExtension
	ResolutionUnknown
)

// Resolve decides whether name is a built-in or an installed extension.
// builtins is the set of command names the Cobra root tree already
// registers; it is the single source of truth for "reserved" names.
func Resolve(name string, builtins map[string]bool, store *extreg.Store) (Resolution, error) {
	if builtins[name] {
		return ResolutionBuiltin, nil
	}
	entries, err := store.List()
	if err != nil {
		return ResolutionUnknown, err
	}
	for _, e := range entries {
		if e.Name == name {
			return ResolutionExtension, nil
		}
	}
	return ResolutionUnknown, nil
}

// RunExtension re-executes the gate-then-serve state machine of §4.8 for an
// installed extension. The Sandbox re-exec (step 2) happens one layer up,
// in internal/cli, since only that layer knows the path to re-invoke; this
// function assumes the process is already confined to permissions.
func RunExtension(ctx context.Context, store *extreg.Store, name string, args []string, cfg extruntime.Config) (int, error) {
	manifest, err := store.Resolve(name)
	if err != nil {
		return 0, err
	}
	cfg.Permissions = manifest.Permissions
	cfg.EntryDir = store.ExtensionDir(name)

	os.Args = append([]string{os.Args[0]}, args...)
	engine := extruntime.New(ctx, cfg)
	entryPath := filepath.Join(cfg.EntryDir, manifest.EntryPoint)
	return engine.RunFile(entryPath)
}

// NeedsReexec reports whether the manifest's effective permissions are not
// covered by the current process's permission set (as granted by the OS
// sandbox it's already running under, if any), implementing §4.8 step 2's
// gate.
func NeedsReexec(current sandbox.PermissionSet, effective sandbox.PermissionSet) bool {
	return !effective.Subset(current)
}

// ErrAmbiguous describes a name that is neither a built-in nor a known
// extension. Resolve reports that case as ResolutionUnknown with a nil
// error, and no caller in this module returns ErrAmbiguous.
var ErrAmbiguous = fmt.Errorf("dispatcher: command not found")
