package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/vortex-bridge/pkg/config"
	"github.com/platinummonkey/vortex-bridge/pkg/directory"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

var version = "dev"

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	rootCmd := &cobra.Command{
		Use:           "vortex-bridge",
		Short:         "Session gateway in front of the Vortex invitation API",
		Long:          "Authenticates users against a fixed directory, keeps cookie sessions and proxies invitation management to Vortex.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	rootCmd.AddCommand(serve, newUsersCmd(), newAssertCmd())
	return rootCmd
}

func loadDirectory(cfg *config.Config) (*directory.Directory, error) {
	var opts []directory.Option
	if cfg.Directory.CaseInsensitiveEmail {
		opts = append(opts, directory.WithCaseInsensitiveEmail())
	}
	if cfg.Directory.File == "" {
		return directory.Default(opts...), nil
	}
	return directory.LoadFile(cfg.Directory.File, opts...)
}

func newVortexClient(cfg *config.Config, metrics *observability.Metrics) *vortex.Client {
	opts := []vortex.Option{
		vortex.WithBaseURL(cfg.Vortex.BaseURL),
		vortex.WithTimeout(cfg.Vortex.Timeout),
	}
	if metrics != nil {
		opts = append(opts, vortex.WithObserver(metrics.ObserveUpstream))
	}
	return vortex.NewClient(cfg.Vortex.APIKey, opts...)
}
