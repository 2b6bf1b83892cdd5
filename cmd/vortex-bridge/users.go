package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/vortex-bridge/pkg/config"
)

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the emails in the configured directory",
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

			out := cmd.OutOrStdout()
			for _, u := range dir.ListPublic() {
				fmt.Fprintln(out, u.Email)
			}
			return nil
		},
	}
}
