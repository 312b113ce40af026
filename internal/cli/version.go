package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/pkg/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(a.stdout, version.UserAgent())
			return nil
		},
	}
}
