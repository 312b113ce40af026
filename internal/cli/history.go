package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/projectfile"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past analysis jobs for the linked project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			path, err := projectfile.Find(dir)
			if err != nil {
				return err
			}
			pf, err := projectfile.Load(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			var jobs []struct {
				JobID     string `json:"job_id"`
				Status    string `json:"status"`
				CreatedAt string `json:"created_at"`
			}
			endpoint := fmt.Sprintf("v1/projects/%s/jobs?limit=%d", pf.ID, limit)
			if err := client.Do(ctx, "GET", endpoint, nil, &jobs); err != nil {
				return err
			}
			for _, j := range jobs {
				fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", j.CreatedAt, j.Status, j.JobID)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of jobs to show")
	return cmd
}
