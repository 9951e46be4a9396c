package config

import (
	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/audit"
	"github.com/xteampro/funnel/internal/worker"
	"github.com/xteampro/funnel/pkg/utils"
)

// APIClientConfig converts the api section for api.NewClient
func (c *Config) APIClientConfig() api.Config {
	return api.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		UserAgent: c.API.UserAgent,
	}
}

// PollerConfig converts the poll section for worker.NewResultsPoller
func (c *Config) PollerConfig() worker.PollerConfig {
	cfg := worker.DefaultPollerConfig()
	cfg.PollInterval = c.Poll.Interval
	cfg.ProgressInterval = c.Poll.ProgressInterval
	cfg.MaxFailures = c.Poll.MaxFailures
	return cfg
}

// WizardConfig converts the audit section for audit.NewWizard
func (c *Config) WizardConfig() audit.Config {
	return audit.Config{RedirectDelay: c.Audit.RedirectDelay}
}

// LoggerOptions converts the logger section for utils.NewLogger
func (c *Config) LoggerOptions() utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
	}
}
