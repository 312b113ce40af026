package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/orchestrate"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		noGeneration bool
		skipSandbox  bool
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "parse [PATH]",
		Short: "Locate and parse dependency files without submitting an analysis",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			files, discErrs := orchestrate.Discover(ctx, abs, orchestrate.ResolveOptions{
				NoGeneration: noGeneration,
				SkipSandbox:  skipSandbox,
			})
			for _, e := range discErrs {
				a.log.Warn(e.Error())
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(files)
			}

			for _, f := range files {
				fmt.Fprintf(a.stdout, "%s (%s)\n", f.Entry.Path, f.Entry.Format)
				for _, pkg := range f.Resolved.Packages {
					fmt.Fprintf(a.stdout, "  %s %s@%s\n", pkg.Ecosystem, pkg.Name, pkg.Version)
				}
			}
			if len(discErrs) > 0 {
				return fmt.Errorf("parse: %d dependency file(s) failed to resolve", len(discErrs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noGeneration, "no-generation", false, "fail instead of generating a missing lockfile")
	cmd.Flags().BoolVar(&skipSandbox, "skip-sandbox", false, "run lockfile generators unsandboxed when no OS sandbox is available")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit structured JSON instead of a human summary")
	return cmd
}
