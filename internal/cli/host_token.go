package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-dashboard/internal/auth"
)

func newHostTokenCmd(root *rootOptions) *cobra.Command {
	var teammate string
	var ttlMinutes int

	c := &cobra.Command{
		Use:   "host-token",
		Short: "Mint a bearer token for pushing host context to the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttlMinutes <= 0 {
				ttlMinutes = root.cfg.Host.TokenTTLMinutes
			}
			tokens := auth.NewTokenManager(root.cfg.Host.ContextSecret, ttlMinutes)
			token, expiresAt, err := tokens.GenerateToken(teammate)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", token, expiresAt.UTC().Format(time.RFC3339))
			return err
		},
	}

	c.Flags().StringVar(&teammate, "teammate", "", "Teammate the token is issued for")
	c.Flags().IntVar(&ttlMinutes, "ttl-minutes", 0, "Token lifetime (defaults to HOST_TOKEN_TTL_MINUTES)")
	return c
}
