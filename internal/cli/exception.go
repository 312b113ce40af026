package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExceptionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exception",
		Short: "Manage policy exceptions for the linked project",
	}
	cmd.AddCommand(
		newExceptionAddCmd(a),
		newExceptionListCmd(a),
		newExceptionRemoveCmd(a),
	)
	return cmd
}

func newExceptionAddCmd(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "add PACKAGE",
		Short: "Add a policy exception for a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			body := map[string]string{"package": args[0], "reason": reason}
			return client.Do(ctx, "POST", "v1/exceptions", body, nil)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why this exception is granted")
	return cmd
}

func newExceptionListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List policy exceptions for the linked project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			var exceptions []struct {
				Package string `json:"package"`
				Reason  string `json:"reason"`
			}
			if err := client.Do(ctx, "GET", "v1/exceptions", nil, &exceptions); err != nil {
				return err
			}
			for _, e := range exceptions {
				fmt.Fprintf(a.stdout, "%s\t%s\n", e.Package, e.Reason)
			}
			return nil
		},
	}
}

func newExceptionRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PACKAGE",
		Short: "Remove a policy exception",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			return client.Do(ctx, "DELETE", "v1/exceptions/"+args[0], nil, nil)
		},
	}
}
