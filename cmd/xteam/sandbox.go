package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xteampro/funnel/internal/sandbox"
	"github.com/xteampro/funnel/internal/worker"
)

func newSandboxCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run a local in-memory backend",
		Long: `Serves the full backend API from memory until interrupted. Audits complete
after the configured processing delay; a company name containing "[fail]"
makes its audit fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Sandbox
			cfg := sandbox.DefaultConfig()
			cfg.Server.Host = sc.Host
			cfg.Server.Port = sc.Port
			cfg.Server.ReadTimeout = sc.ReadTimeout
			cfg.Server.WriteTimeout = sc.WriteTimeout
			cfg.ProcessingDelay = sc.ProcessingDelay
			cfg.Username = sc.Username
			cfg.Password = sc.Password
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			sb := sandbox.New(cfg, a.logger)
			manager := worker.NewManager(a.logger)
			manager.Register(sb.Workers()...)
			if err := manager.StartAll(cmd.Context()); err != nil {
				return err
			}
			defer manager.StopAll()

			fmt.Fprintf(cmd.OutOrStdout(), "Sandbox listening on http://%s (admin %s). Press Ctrl+C to stop.\n",
				sb.Server.Address(), cfg.Username)
			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "port to listen on")
	return cmd
}
