package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/auth"
	"github.com/phylum-dev/cli-go/internal/extreg"
	"github.com/phylum-dev/cli-go/internal/extruntime"
	"github.com/phylum-dev/cli-go/internal/projectfile"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

func newExtensionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extension",
		Short: "Manage and run Phylum extensions",
	}
	cmd.AddCommand(
		newExtensionInstallCmd(a),
		newExtensionUninstallCmd(a),
		newExtensionListCmd(a),
		newExtensionNewCmd(a),
		newExtensionRunCmd(a),
	)
	return cmd
}

func newExtensionInstallCmd(a *app) *cobra.Command {
	var overwrite, yes bool
	cmd := &cobra.Command{
		Use:   "install PATH",
		Short: "Install an extension from a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := a.extStore.Install(args[0], func(name string) bool {
				return BuiltinNames()[name]
			}, extreg.InstallOptions{
				Overwrite:             overwrite,
				Yes:                   yes,
				AcknowledgePermission: a.confirmPermission,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Installed %s\n", manifest.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an already-installed extension of the same name")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the per-permission acknowledgment prompt")
	return cmd
}

func newExtensionUninstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall NAME",
		Short: "Remove an installed extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.extStore.Uninstall(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Uninstalled %s\n", args[0])
			return nil
		},
	}
}

func newExtensionListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed extensions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.extStore.List()
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(a.stdout, "%s\t%s\n", e.Name, e.Description)
			}
			return nil
		},
	}
}

func newExtensionNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new PATH",
		Short: "Scaffold a new extension directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := extensionNameFromPath(args[0])
			if err := extreg.New(args[0], name); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Scaffolded extension %q at %s\n", name, args[0])
			return nil
		},
	}
}

func newExtensionRunCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:                "run PATH [args...]",
		Short:              "Run an extension directory that has not been installed",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var scriptArgs []string
			for _, arg := range args[1:] {
				if arg == "--yes" {
					yes = true
					continue
				}
				scriptArgs = append(scriptArgs, arg)
			}
			os.Args = append([]string{os.Args[0]}, scriptArgs...)

			manifest, err := extreg.LoadManifest(path)
			if err != nil {
				return err
			}

			if !yes {
				for field, grant := range extreg.PermissionFields(manifest.Permissions) {
					if extreg.IsEmptyGrant(grant) {
						continue
					}
					if !a.confirmPermission(field, grant) {
						return fmt.Errorf("extension run: permission %q not acknowledged", field)
					}
				}
			}

			ctx := cmd.Context()
			cfg, err := a.extensionConfig(ctx)
			if err != nil {
				return err
			}
			cfg.Permissions = manifest.Permissions
			cfg.EntryDir = path

			if dispatcherNeedsReexec(manifest.Permissions) {
				a.log.Debug("extension requests isolation beyond the current process; the engine itself still gates every host-API call per-permission")
			}

			engine := extruntime.New(ctx, cfg)
			entryPath := path + "/" + manifest.EntryPoint
			code, err := engine.RunFile(entryPath)
			if err != nil {
				return err
			}
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the permission acknowledgment prompt")
	return cmd
}

// dispatcherNeedsReexec reports whether the unconfined current process falls
// short of an extension's requested permission set (§4.8 step 2's gate).
func dispatcherNeedsReexec(effective sandbox.PermissionSet) bool {
	return !effective.Subset(sandbox.PermissionSet{})
}

func extensionNameFromPath(path string) string {
	parts := strings.Split(strings.TrimRight(path, "/"), "/")
	return parts[len(parts)-1]
}

// confirmPermission is extreg.InstallOptions' AcknowledgePermission callback:
// it prompts on stdin, the terminal-interaction detail left to the CLI
// layer by internal/extreg.
func (a *app) confirmPermission(field string, grant sandbox.PathGrant) bool {
	fmt.Fprintf(a.stdout, "This extension requests %q access", field)
	if grant.All {
		fmt.Fprint(a.stdout, " to everything")
	} else if len(grant.Paths) > 0 {
		fmt.Fprintf(a.stdout, " to: %s", strings.Join(grant.Paths, ", "))
	}
	fmt.Fprint(a.stdout, ". Allow? [y/N] ")
	reader := bufio.NewReader(a.stdin)
	line, _ := reader.ReadString('\n')
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y")
}

// extensionConfig builds the extruntime.Config shared by `extension run`,
// resolving the current project link (if any) so Phylum.getCurrentProject()
// has something to return.
func (a *app) extensionConfig(ctx context.Context) (extruntime.Config, error) {
	client, err := a.client(ctx)
	if err != nil {
		return extruntime.Config{}, err
	}

	var proj extruntime.ProjectContext
	if dir, err := os.Getwd(); err == nil {
		if path, err := projectfile.Find(dir); err == nil {
			if pf, err := projectfile.Load(path); err == nil {
				proj = extruntime.ProjectContext{ID: pf.ID, Name: pf.Name, Group: pf.Group, Org: pf.Organization}
			}
		}
	}

	return extruntime.Config{
		Client:  client,
		Project: proj,
		AccessToken: func(ctx context.Context) (string, error) {
			return auth.ResolveToken(ctx, a.cfg, nil)
		},
		RefreshToken: func(ctx context.Context) (string, error) {
			return auth.ResolveToken(ctx, a.cfg, nil)
		},
	}, nil
}
