package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/auth"
	"github.com/phylum-dev/cli-go/internal/config"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication state",
	}
	cmd.AddCommand(
		newAuthLoginCmd(a),
		newAuthLogoutCmd(a),
		newAuthStatusCmd(a),
		newAuthTokenCmd(a),
		newAuthSetTokenCmd(a),
		newAuthCreateTokenCmd(a),
		newAuthListTokensCmd(a),
		newAuthRevokeTokenCmd(a),
		newAuthRegisterCmd(a),
	)
	return cmd
}

func newAuthLoginCmd(a *app) *cobra.Command {
	var issuerURL, clientID string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in via the OIDC device-authorization grant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			provider, err := auth.NewProvider(ctx, issuerURL, clientID)
			if err != nil {
				return err
			}
			resp, result, err := provider.StartDeviceLogin(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "To authenticate, visit:\n\n  %s\n\nand enter code: %s\n", result.VerificationURI, result.UserCode)
			if result.VerificationURIComplete != "" {
				fmt.Fprintf(a.stdout, "\nor open directly:\n\n  %s\n", result.VerificationURIComplete)
			}

			tok, err := provider.CompleteDeviceLogin(ctx, resp)
			if err != nil {
				return err
			}
			auth.StoreSecret(a.cfg, a.cfg.APIBaseURL, config.TokenKindRefreshToken, tok.RefreshToken)
			if err := a.store.Save(a.cfg); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&issuerURL, "issuer", "https://auth.phylum.io", "OIDC issuer URL")
	cmd.Flags().StringVar(&clientID, "client-id", "phylum-cli", "OIDC client id")
	return cmd
}

func newAuthLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth.ClearSecret(a.cfg, a.cfg.APIBaseURL)
			return a.store.Save(a.cfg)
		},
	}
}

func newAuthStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the CLI is currently authenticated",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tok, err := auth.ResolveToken(ctx, a.cfg, nil)
			if err != nil || tok == "" {
				fmt.Fprintln(a.stdout, "Not logged in.")
				return nil
			}
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			info, err := client.GetUserInfo(ctx)
			if err != nil {
				fmt.Fprintln(a.stdout, "Logged in, but user info could not be retrieved.")
				return nil
			}
			fmt.Fprintf(a.stdout, "Logged in as %s\n", info.Email)
			return nil
		},
	}
}

func newAuthTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the current access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := auth.ResolveToken(cmd.Context(), a.cfg, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, tok)
			return nil
		},
	}
}

func newAuthSetTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-token TOKEN",
		Short: "Store a long-lived API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth.StoreSecret(a.cfg, a.cfg.APIBaseURL, config.TokenKindAPIKey, args[0])
			return a.store.Save(a.cfg)
		},
	}
}

func newAuthCreateTokenCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create-token",
		Short: "Create a new named API token on the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			var out struct {
				Token string `json:"token"`
			}
			if err := client.Do(ctx, "POST", "v1/tokens", map[string]string{"name": name}, &out); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, out.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "label for the new token")
	return cmd
}

func newAuthListTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-tokens",
		Short: "List API tokens registered to the current account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			var tokens []struct {
				Name string `json:"name"`
				ID   string `json:"id"`
			}
			if err := client.Do(ctx, "GET", "v1/tokens", nil, &tokens); err != nil {
				return err
			}
			for _, t := range tokens {
				fmt.Fprintf(a.stdout, "%s\t%s\n", t.ID, t.Name)
			}
			return nil
		},
	}
}

func newAuthRevokeTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-token ID",
		Short: "Revoke a named API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			return client.Do(ctx, "DELETE", "v1/tokens/"+args[0], nil, nil)
		},
	}
}

func newAuthRegisterCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			return client.Do(ctx, "POST", "v1/register", map[string]string{"email": email}, nil)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}
