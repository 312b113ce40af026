package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/orchestrate"
	"github.com/phylum-dev/cli-go/internal/projectfile"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		noGeneration bool
		skipSandbox  bool
		label        string
		group        string
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [PATH]",
		Short: "Submit a project's dependencies for supply-chain analysis",
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

			path, pfErr := projectfile.Find(abs)
			var pf *projectfile.File
			if pfErr == nil {
				pf, err = projectfile.Load(path)
				if err != nil {
					return err
				}
			} else {
				pf = &projectfile.File{}
			}
			if group == "" {
				group = pf.Group
			}

			ctx := cmd.Context()
			files, discErrs := orchestrate.Discover(ctx, abs, orchestrate.ResolveOptions{
				NoGeneration: noGeneration,
				SkipSandbox:  skipSandbox,
			})
			for _, e := range discErrs {
				a.log.Warn(e.Error())
			}
			if len(files) == 0 {
				return fmt.Errorf("analyze: no dependency files found under %s", abs)
			}

			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			result, err := orchestrate.Analyze(ctx, client, files, pf.Name, group, a.org, label, a.cfg.APIBaseURL)
			if err != nil && result == nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(result); encErr != nil {
					return encErr
				}
			} else {
				fmt.Fprintf(a.stdout, "Job:  %s\n", result.JobID)
				fmt.Fprintf(a.stdout, "Link: %s\n", result.JobLink)
			}

			if err != nil {
				return fmt.Errorf("analyze: polling job status: %w", err)
			}
			if result.PolicyEvaluated && !result.PassedPolicy {
				os.Exit(ExitPolicyFailed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noGeneration, "no-generation", false, "fail instead of generating a missing lockfile")
	cmd.Flags().BoolVar(&skipSandbox, "skip-sandbox", false, "run lockfile generators unsandboxed when no OS sandbox is available")
	cmd.Flags().StringVar(&label, "label", "", "label to attach to this analysis job")
	cmd.Flags().StringVar(&group, "group", "", "group to submit the analysis under")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit a structured result instead of a human summary")
	return cmd
}
