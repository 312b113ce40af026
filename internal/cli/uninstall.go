package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newUninstallCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the CLI's local configuration and extension data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprintln(a.stdout, "This removes settings.yaml and every installed extension. Pass --yes to confirm.")
				return nil
			}
			if a.store != nil {
				if err := os.Remove(a.store.Path); err != nil && !os.IsNotExist(err) {
					return err
				}
			}
			if a.extStore != nil {
				if err := os.RemoveAll(a.extStore.Dir); err != nil && !os.IsNotExist(err) {
					return err
				}
			}
			fmt.Fprintln(a.stdout, "Removed local configuration and extension data.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal without prompting")
	return cmd
}
