package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/projectfile"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current project link and auth state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			path, err := projectfile.Find(dir)
			if err != nil {
				fmt.Fprintln(a.stdout, "No project linked in this directory or its ancestors.")
			} else {
				pf, err := projectfile.Load(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Project: %s (group: %s, org: %s)\n", pf.Name, pf.Group, pf.Organization)
				fmt.Fprintf(a.stdout, "Dependency files: %d\n", len(pf.DependencyFiles))
			}

			profile := a.cfg.ActiveProfile()
			if profile.Auth.Secret == "" {
				fmt.Fprintln(a.stdout, "Auth: not logged in")
			} else {
				fmt.Fprintf(a.stdout, "Auth: configured (%s)\n", profile.Auth.TokenKind)
			}
			fmt.Fprintf(a.stdout, "API base URL: %s\n", a.cfg.APIBaseURL)
			return nil
		},
	}
	cmd.AddCommand(newSandboxCmd(a))
	return cmd
}

func newSandboxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Inspect sandbox capabilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Report which isolation primitives are available on this host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			caps := sandbox.DetectCapabilities()
			fmt.Fprintf(a.stdout, "platform: %s\n", caps.Platform)
			fmt.Fprintf(a.stdout, "available: %t\n", caps.Available)
			fmt.Fprintf(a.stdout, "bubblewrap: %t\n", caps.Bubblewrap)
			fmt.Fprintf(a.stdout, "unshare: %t\n", caps.Unshare)
			fmt.Fprintf(a.stdout, "sandbox-exec: %t\n", caps.SandboxExec)
			fmt.Fprintf(a.stdout, "unprivileged user namespaces: %t\n", caps.UnprivilegedUserNS)
			return nil
		},
	})
	return cmd
}
