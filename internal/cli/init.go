package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/projectfile"
)

func newInitCmd(a *app) *cobra.Command {
	var group, name string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Link the current directory to a Phylum project",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(dir)
			}

			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			result, err := client.CreateProject(ctx, name, group, "", a.org)
			if err != nil {
				return err
			}

			path := filepath.Join(dir, projectfile.FileName)
			pf := &projectfile.File{
				Version:      projectfile.CurrentVersion,
				ID:           result.ID,
				Name:         name,
				Organization: a.org,
				Group:        group,
			}
			if err := projectfile.Save(path, pf); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Linked %s to project %q\n", dir, name)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group to create the project under")
	cmd.Flags().StringVar(&name, "name", "", "project name (defaults to the directory name)")
	return cmd
}
