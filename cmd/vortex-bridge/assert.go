package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/vortex-bridge/pkg/claims"
	"github.com/platinummonkey/vortex-bridge/pkg/config"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
)

func newAssertCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "assert",
		Short: "Mint a signed assertion for a directory user",
		Long:  "Signs an assertion for the given subject id with the configured Vortex API key. Useful for checking a key before deploying it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			dir, err := loadDirectory(cfg)
			if err != nil {
				return err
			}

			user, ok := dir.FindByID(subject)
			if !ok {
				return fmt.Errorf("no directory user with id %q", subject)
			}

			now := time.Now()
			principal := &session.Principal{
				SubjectID:   user.ID,
				Email:       user.Email,
				DisplayName: user.DisplayName,
				Role:        user.Role,
				Groups:      user.Groups,
				IssuedAt:    now,
				ExpiresAt:   now.Add(cfg.Session.TTL),
			}

			issuer := claims.NewIssuer(newVortexClient(cfg, nil), claims.WithTTL(cfg.Vortex.AssertionTTL))
			assertion, err := issuer.Issue(cmd.Context(), principal)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(assertion)
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "directory user id to sign for")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
