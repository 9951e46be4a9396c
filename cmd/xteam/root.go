package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xteampro/funnel/internal/admin"
	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/config"
	"github.com/xteampro/funnel/internal/store"
	"github.com/xteampro/funnel/pkg/utils"
	"go.uber.org/zap"
)

// app holds what every command needs once configuration is loaded
type app struct {
	configPath string
	apiURL     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	client *api.Client
	store  *store.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "xteam",
		Short: "XTeam automation audit, contact and ROI client",
		Long: `xteam talks to the XTeam backend: run the automation audit questionnaire,
follow its results, send a contact inquiry, estimate ROI and manage submissions
as an administrator. "xteam sandbox" runs a local backend for offline use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: search the user config dir and .)")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAuditCmd(a),
		newContactCmd(a),
		newROICmd(a),
		newAdminCmd(a),
		newLangCmd(a),
		newSandboxCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	logCfg := cfg.LoggerOptions()
	if a.verbose {
		logCfg.Level = "debug"
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	st, err := store.Open(ctx, cfg.Store.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open local state: %w", err)
	}
	a.store = st

	a.client = api.NewClient(cfg.APIClientConfig(), logger)

	lang := cfg.Language
	if saved, ok, err := st.Get(ctx, store.KeyLanguage); err == nil && ok {
		lang = saved
	}
	a.client.SetLanguage(lang)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.logger != nil {
		// Sync on stderr returns EINVAL on some platforms
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

// adminService restores the saved session. A token from the environment
// takes precedence over the saved one without replacing it.
func (a *app) adminService(ctx context.Context) (*admin.Service, error) {
	session := admin.NewSession(a.store)
	if _, err := session.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load admin session: %w", err)
	}
	if a.cfg.Admin.Token != "" {
		session.Use(a.cfg.Admin.Token)
	}
	return admin.NewService(a.client, session, a.logger), nil
}
