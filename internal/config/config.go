package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all client configuration
type Config struct {
	API      APIConfig     `mapstructure:"api"`
	Poll     PollConfig    `mapstructure:"poll"`
	Audit    AuditConfig   `mapstructure:"audit"`
	Admin    AdminConfig   `mapstructure:"admin"`
	Store    StoreConfig   `mapstructure:"store"`
	Sandbox  SandboxConfig `mapstructure:"sandbox"`
	Logger   LoggerConfig  `mapstructure:"logger"`
	Language string        `mapstructure:"language"`
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// PollConfig holds results poller timings
type PollConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	MaxFailures      int           `mapstructure:"max_failures"`
}

// AuditConfig holds audit wizard configuration
type AuditConfig struct {
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
}

// AdminConfig holds admin credentials supplied out of band
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// StoreConfig holds local client state configuration
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SandboxConfig holds the local fake backend configuration
type SandboxConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ProcessingDelay time.Duration `mapstructure:"processing_delay"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// DefaultDir is where the config file and local state live by default
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "xteam")
	}
	return ".xteam"
}

// Load reads configuration from an optional YAML file, a .env file in the
// working directory and XTEAM_* environment variables, in rising precedence.
// An empty configPath searches the default locations; a missing file there
// is not an error.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("XTEAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.user_agent", "xteam-cli")

	v.SetDefault("poll.interval", 5*time.Second)
	v.SetDefault("poll.progress_interval", 2*time.Second)
	v.SetDefault("poll.max_failures", 5)

	v.SetDefault("audit.redirect_delay", 2*time.Second)

	v.SetDefault("store.path", filepath.Join(DefaultDir(), "state.db"))

	v.SetDefault("sandbox.host", "127.0.0.1")
	v.SetDefault("sandbox.port", 8000)
	v.SetDefault("sandbox.read_timeout", 30*time.Second)
	v.SetDefault("sandbox.write_timeout", 30*time.Second)
	v.SetDefault("sandbox.processing_delay", 8*time.Second)
	v.SetDefault("sandbox.username", "admin")
	v.SetDefault("sandbox.password", "admin")

	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.output_path", "stderr")
	v.SetDefault("logger.format", "console")

	v.SetDefault("language", "en")
}

// bindEnvVars binds the short environment names used in scripts and CI
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("api.base_url", "XTEAM_API_URL")
	_ = v.BindEnv("admin.token", "XTEAM_ADMIN_TOKEN")
	_ = v.BindEnv("store.path", "XTEAM_STATE")
	_ = v.BindEnv("logger.level", "XTEAM_LOG_LEVEL")
	_ = v.BindEnv("language", "XTEAM_LANG")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Poll.Interval <= 0 || c.Poll.ProgressInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.Audit.RedirectDelay < 0 {
		return fmt.Errorf("audit.redirect_delay must not be negative")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Sandbox.Port <= 0 || c.Sandbox.Port > 65535 {
		return fmt.Errorf("sandbox.port must be between 1 and 65535")
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}
	return nil
}
