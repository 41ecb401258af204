package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"msgagent/middleware"
)

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token USER",
		Short: "Issue a bearer token for the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := middleware.IssueToken(cfg.Auth.JWTSecret, args[0], ttl)
			if err != nil {
				return fmt.Errorf("issue token (is [auth] jwt_secret set?): %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to [auth] token_ttl)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newTokenCmd())
}
