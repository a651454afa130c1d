package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vimeo "github.com/videolib/vimeo-go"
	"github.com/videolib/vimeo-go/internal/tokenfile"
)

func newAuthURLCmd() *cobra.Command {
	var (
		redirect string
		scopes   []string
		state    string
	)

	cmd := &cobra.Command{
		Use:   "auth-url",
		Short: "Print the OAuth authorization URL to open in a browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			client, err := newSDKClient(logger)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), client.AuthCodeURL(redirect, scopes, state))

			return nil
		},
	}

	cmd.Flags().StringVar(&redirect, "redirect", "", "registered redirect URI")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "requested scopes (default: public)")
	cmd.Flags().StringVar(&state, "state", "", "opaque state echoed back on the redirect")
	_ = cmd.MarkFlagRequired("redirect")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var (
		code     string
		redirect string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange an authorization code for an access token and save it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			client, err := newSDKClient(logger)
			if err != nil {
				return err
			}

			tok, err := client.ExchangeCode(cmd.Context(), code, redirect)
			if err != nil {
				return err
			}

			if err := saveToken(tok); err != nil {
				return err
			}

			statusf("Login successful.\n")

			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "authorization code from the redirect")
	cmd.Flags().StringVar(&redirect, "redirect", "", "redirect URI used for auth-url")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("redirect")

	return cmd
}

func newTokenCmd() *cobra.Command {
	var scopes []string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Request a client-credentials access token and save it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			client, err := newSDKClient(logger)
			if err != nil {
				return err
			}

			tok, err := client.ClientCredentialsToken(cmd.Context(), scopes...)
			if err != nil {
				return err
			}

			if err := saveToken(tok); err != nil {
				return err
			}

			statusf("Token issued (scope: %s).\n", tok.Scope)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "requested scopes (default: public)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved access token",
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := tokenPath()
			if err != nil {
				return err
			}

			if err := tokenfile.Remove(path); err != nil {
				return err
			}

			statusf("Logged out.\n")

			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the authenticated user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			client, err := newSDKClient(logger)
			if err != nil {
				return err
			}

			user, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s account)\n", user.Name, user.URI, user.Account)

			return nil
		},
	}
}

// saveToken persists a token with its user metadata for later sessions.
func saveToken(tok *vimeo.Token) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}

	meta := map[string]string{tokenfile.MetaScope: tok.Scope}
	if tok.User != nil {
		meta[tokenfile.MetaUserURI] = tok.User.URI
		meta[tokenfile.MetaUserName] = tok.User.Name
	}

	return tokenfile.Save(path, tok.OAuth2(), meta)
}
