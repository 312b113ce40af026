package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}
	cmd.AddCommand(
		newGroupCreateCmd(a),
		newGroupDeleteCmd(a),
		newGroupListCmd(a),
		newGroupMemberCmd(a),
	)
	return cmd
}

func newGroupCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			return client.Do(ctx, "POST", "v1/groups", map[string]string{"name": args[0], "org": a.org}, nil)
		},
	}
}

func newGroupDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			return client.Do(ctx, "DELETE", "v1/groups/"+args[0], nil, nil)
		},
	}
}

func newGroupListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			groups, err := client.GetGroups(ctx)
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintln(a.stdout, g.Name)
			}
			return nil
		},
	}
}

func newGroupMemberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage group membership",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add GROUP EMAIL",
			Short: "Add a member to a group",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				client, err := a.client(ctx)
				if err != nil {
					return err
				}
				return client.Do(ctx, "POST", "v1/groups/"+args[0]+"/members", map[string]string{"email": args[1]}, nil)
			},
		},
		&cobra.Command{
			Use:   "list GROUP",
			Short: "List a group's members",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				client, err := a.client(ctx)
				if err != nil {
					return err
				}
				var members []struct {
					Email string `json:"email"`
				}
				if err := client.Do(ctx, "GET", "v1/groups/"+args[0]+"/members", nil, &members); err != nil {
					return err
				}
				for _, m := range members {
					fmt.Fprintln(a.stdout, m.Email)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove GROUP EMAIL",
			Short: "Remove a member from a group",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				client, err := a.client(ctx)
				if err != nil {
					return err
				}
				return client.Do(ctx, "DELETE", "v1/groups/"+args[0]+"/members/"+args[1], nil, nil)
			},
		},
	)
	return cmd
}
