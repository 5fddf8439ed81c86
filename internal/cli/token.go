package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/suPer8Hu/codeassist/internal/auth"
)

func (a *app) tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Mint a bearer token for the HTTP API",
		Long:        `Mint a bearer token signed with JWT_SECRET (or --secret).`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"store": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.secret == "" {
				return errors.New("no secret: set JWT_SECRET or pass --secret")
			}
			tok, err := auth.SignJWT(subject, a.secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "chatctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&a.secret, "secret", a.secret, "signing secret")
	return cmd
}
