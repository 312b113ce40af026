package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newPackageCmd(a *app) *cobra.Command {
	var ecosystem string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "package NAME VERSION",
		Short: "Show risk details for a single package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			details, err := client.GetPackageDetails(ctx, args[0], args[1], ecosystem)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(details)
			}
			fmt.Fprintf(a.stdout, "%s@%s (%s)\n", details.Name, details.Version, details.Ecosystem)
			fmt.Fprintf(a.stdout, "risk score: %d\n", details.RiskScore)
			return nil
		},
	}
	cmd.Flags().StringVar(&ecosystem, "ecosystem", "", "package ecosystem (npm, pypi, cargo, ...)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit structured JSON instead of a human summary")
	return cmd
}
