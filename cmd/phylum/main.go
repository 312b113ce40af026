// Command phylum is the entrypoint: it checks whether the first argument
// names an installed extension before falling through to the Cobra root
// command, mirroring kcli's cmd/kcli/main.go (plugin.TryRunForArgs checked
// ahead of the kubectl-passthrough/root-command fallback).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/phylum-dev/cli-go/internal/apiclient"
	"github.com/phylum-dev/cli-go/internal/auth"
	"github.com/phylum-dev/cli-go/internal/cli"
	"github.com/phylum-dev/cli-go/internal/config"
	"github.com/phylum-dev/cli-go/internal/dispatcher"
	"github.com/phylum-dev/cli-go/internal/extreg"
	"github.com/phylum-dev/cli-go/internal/extruntime"
	"github.com/phylum-dev/cli-go/internal/projectfile"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

// reexecEnvVar marks a process that has already been re-invoked under the
// OS sandbox for an extension run, so the gate in runAsExtension isn't
// applied a second time to the confined child.
const reexecEnvVar = "PHYLUM_SANDBOX_CONFINED"

func main() {
	args := os.Args[1:]
	if name := firstArg(args); name != "" {
		store, err := extreg.NewStore()
		if err == nil {
			resolution, rerr := dispatcher.Resolve(name, cli.BuiltinNames(), store)
			if rerr == nil && resolution == dispatcher.ResolutionExtension {
				code, err := runAsExtension(store, name, args[1:])
				if err != nil {
					fmt.Fprintln(os.Stderr, "error:", err)
					os.Exit(1)
				}
				os.Exit(code)
			}
		}
	}

	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func firstArg(args []string) string {
	for _, a := range args {
		if len(a) > 0 && a[0] != '-' {
			return a
		}
	}
	return ""
}

// runAsExtension implements §4.8's Gate step: an unconfined process
// re-execs itself under the OS sandbox (internal/sandbox.Run) with the
// manifest's effective permissions before Initialize/Serve ever run;
// the re-exec'd child (marked via reexecEnvVar) proceeds straight to
// Initialize. Grounded on kcli's plugin.Run/sandboxedCommand, which
// re-invokes the CLI binary itself with a restricted environment before
// running plugin code.
func runAsExtension(store *extreg.Store, name string, args []string) (int, error) {
	manifest, err := store.Resolve(name)
	if err != nil {
		return 0, err
	}

	if os.Getenv(reexecEnvVar) == "" && dispatcher.NeedsReexec(sandbox.PermissionSet{}, manifest.Permissions) {
		return reexecUnderSandbox(manifest.Permissions, args)
	}

	cfg, err := buildExtensionConfig(context.Background())
	if err != nil {
		return 0, err
	}
	return dispatcher.RunExtension(context.Background(), store, name, args, cfg)
}

func reexecUnderSandbox(perms sandbox.PermissionSet, args []string) (int, error) {
	self, err := os.Executable()
	if err != nil {
		return 0, err
	}
	result, err := sandbox.Run(context.Background(), sandbox.Command{
		Path:        self,
		Args:        append([]string{}, os.Args[1:]...),
		Env:         append(os.Environ(), reexecEnvVar+"=1"),
		Permissions: perms,
		Stdio:       sandbox.StdioInherit,
	})
	if err != nil {
		return 0, err
	}
	return result.ExitCode, nil
}

// buildExtensionConfig mirrors internal/cli's own extension-config
// assembly for the `extension run` subcommand, duplicated here because
// main's re-exec path never goes through the Cobra app struct.
func buildExtensionConfig(ctx context.Context) (extruntime.Config, error) {
	store, err := config.DefaultStore()
	if err != nil {
		return extruntime.Config{}, err
	}
	cfg, err := store.Load()
	if err != nil {
		return extruntime.Config{}, err
	}

	tokenSource := func(ctx context.Context) (string, error) {
		return auth.ResolveToken(ctx, cfg, nil)
	}
	client := apiclient.New(cfg.APIBaseURL, tokenSource, 60*time.Second, false)

	var proj extruntime.ProjectContext
	if dir, err := os.Getwd(); err == nil {
		if path, err := projectfile.Find(dir); err == nil {
			if pf, err := projectfile.Load(path); err == nil {
				proj = extruntime.ProjectContext{ID: pf.ID, Name: pf.Name, Group: pf.Group, Org: pf.Organization}
			}
		}
	}

	return extruntime.Config{
		Client:       client,
		Project:      proj,
		AccessToken:  tokenSource,
		RefreshToken: tokenSource,
	}, nil
}
