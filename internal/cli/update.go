package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/pkg/version"
)

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check for a newer CLI release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			var latest struct {
				Version string `json:"version"`
			}
			if err := client.Do(ctx, "GET", "v1/cli/latest", nil, &latest); err != nil {
				return err
			}
			if latest.Version == "" || latest.Version == version.Version {
				fmt.Fprintf(a.stdout, "Already up to date (%s).\n", version.Version)
				return nil
			}
			fmt.Fprintf(a.stdout, "A newer version is available: %s (current: %s)\n", latest.Version, version.Version)
			fmt.Fprintln(a.stdout, "Install it via your platform's package manager or the distributed installer.")
			return nil
		},
	}
}
