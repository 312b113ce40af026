package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/projectfile"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage Phylum projects",
	}
	cmd.AddCommand(
		newProjectCreateCmd(a),
		newProjectDeleteCmd(a),
		newProjectLinkCmd(a),
		newProjectListCmd(a),
		newProjectStatusCmd(a),
		newProjectUpdateCmd(a),
	)
	return cmd
}

func newProjectCreateCmd(a *app) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			result, err := client.CreateProject(ctx, args[0], group, "", a.org)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s\t%s\n", result.ID, result.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group to create the project under")
	return cmd
}

func newProjectDeleteCmd(a *app) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			return client.DeleteProject(ctx, args[0], group, a.org)
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group the project belongs to")
	return cmd
}

func newProjectLinkCmd(a *app) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "link NAME ID",
		Short: "Link the current directory to an existing project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, projectfile.FileName)
			pf := &projectfile.File{
				Version:      projectfile.CurrentVersion,
				ID:           args[1],
				Name:         args[0],
				Organization: a.org,
				Group:        group,
			}
			if err := projectfile.Save(path, pf); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Linked %s to project %q\n", dir, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group the project belongs to")
	return cmd
}

func newProjectListCmd(a *app) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			projects, err := client.GetProjects(ctx, group)
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Fprintf(a.stdout, "%s\t%s\n", p.ID, p.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "restrict listing to this group")
	return cmd
}

func newProjectStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the project linked in the current directory",
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
			fmt.Fprintf(a.stdout, "%s\t%s\t%s\t%s\n", pf.ID, pf.Name, pf.Group, pf.Organization)
			return nil
		},
	}
}

func newProjectUpdateCmd(a *app) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the project link's group/org in .phylum_project",
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
			if group != "" {
				pf.Group = group
			}
			if a.org != "" {
				pf.Organization = a.org
			}
			return projectfile.Save(path, pf)
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "new group")
	return cmd
}
