package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marklist/backend/internal/auth"
	"marklist/backend/internal/shared"
)

// TokenResult is the json output of the token command
type TokenResult struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the write endpoints",
		Long: `Mint an HS256 bearer token signed with API_TOKEN_SECRET.

The server only checks tokens when API_TOKEN_SECRET is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shared.LoadConfig()
			if cfg.Security.TokenSecret == "" {
				return errors.New("API_TOKEN_SECRET environment variable is required")
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Security.TokenTTL
			}

			token, expiresAt, err := auth.IssueToken(cfg.Security.TokenSecret, subject, ttl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, TokenResult{Token: token, Subject: subject, ExpiresAt: expiresAt})
			}
			_, err = fmt.Fprintln(out, token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "who the token is issued to")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime (defaults to API_TOKEN_TTL)")
	return cmd
}
