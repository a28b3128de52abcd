package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/cost-estimator/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		user  string
		ttl   time.Duration
		admin bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Auth.SigningKey == "" {
				return errors.New("auth.signingKey is required to mint tokens")
			}
			tokens, err := auth.NewJWTAuthority(a.cfg.Auth.SigningKey, a.cfg.Auth.Issuer, a.cfg.Auth.Audience)
			if err != nil {
				return err
			}

			p := auth.Principal{UserID: strings.TrimSpace(user), Role: auth.RoleUser}
			if admin {
				p = auth.Principal{UserID: auth.AdminUserID, Role: auth.RoleAdmin}
			}
			if ttl <= 0 {
				ttl = a.cfg.Auth.TokenTTL
			}

			token, err := tokens.Issue(p, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user ID for the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.tokenTTL)")
	cmd.Flags().BoolVar(&admin, "admin", false, "mint an admin token instead of a user token")
	cmd.MarkFlagsMutuallyExclusive("user", "admin")
	cmd.MarkFlagsOneRequired("user", "admin")
	return cmd
}

func newHashPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print a bcrypt hash for auth.adminPasswordHash",
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading password: %w", err)
			}
			hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
