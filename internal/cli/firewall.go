package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFirewallCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firewall",
		Short: "Inspect the registry firewall",
	}
	cmd.AddCommand(newFirewallLogCmd(a))
	return cmd
}

func newFirewallLogCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent firewall block/allow decisions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			var entries []struct {
				Package string `json:"package"`
				Action  string `json:"action"`
				Reason  string `json:"reason"`
			}
			endpoint := fmt.Sprintf("v1/firewall/log?limit=%d", limit)
			if err := client.Do(ctx, "GET", endpoint, nil, &entries); err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", e.Action, e.Package, e.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries to show")
	return cmd
}
