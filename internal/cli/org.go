package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOrgCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations",
	}
	cmd.AddCommand(
		newOrgLinkCmd(a),
		newOrgUnlinkCmd(a),
		newOrgListCmd(a),
		newOrgMemberCmd(a),
	)
	return cmd
}

func newOrgLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link NAME",
		Short: "Set the organization this invocation is scoped to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := a.cfg.ActiveProfile()
			profile.Auth.Organization = args[0]
			a.cfg.SetProfile(profile)
			return a.store.Save(a.cfg)
		},
	}
}

func newOrgUnlinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: "Clear the scoped organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile := a.cfg.ActiveProfile()
			profile.Auth.Organization = ""
			a.cfg.SetProfile(profile)
			return a.store.Save(a.cfg)
		},
	}
}

func newOrgListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations the current account belongs to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			var orgs []struct {
				Name string `json:"name"`
			}
			if err := client.Do(ctx, "GET", "v1/orgs", nil, &orgs); err != nil {
				return err
			}
			for _, o := range orgs {
				fmt.Fprintln(a.stdout, o.Name)
			}
			return nil
		},
	}
}

func newOrgMemberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage organization membership",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add ORG EMAIL",
			Short: "Add a member to an organization",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				client, err := a.client(ctx)
				if err != nil {
					return err
				}
				return client.Do(ctx, "POST", "v1/orgs/"+args[0]+"/members", map[string]string{"email": args[1]}, nil)
			},
		},
		&cobra.Command{
			Use:   "list ORG",
			Short: "List an organization's members",
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
				if err := client.Do(ctx, "GET", "v1/orgs/"+args[0]+"/members", nil, &members); err != nil {
					return err
				}
				for _, m := range members {
					fmt.Fprintln(a.stdout, m.Email)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove ORG EMAIL",
			Short: "Remove a member from an organization",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				client, err := a.client(ctx)
				if err != nil {
					return err
				}
				return client.Do(ctx, "DELETE", "v1/orgs/"+args[0]+"/members/"+args[1], nil, nil)
			},
		},
	)
	return cmd
}
