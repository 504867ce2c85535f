package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"onboarding-reminders/internal/models"
)

// Config is the full application configuration, loaded from config files
// with environment variable overrides.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
	Vendors  VendorConfig   `mapstructure:"vendors"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	SiteName    string `mapstructure:"site_name"`
	BaseURL     string `mapstructure:"base_url"`
	Environment string `mapstructure:"environment"`
	AdminEmail  string `mapstructure:"admin_email"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"` // full DSN, overrides the parts below
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StripeConfig struct {
	APIKey string `mapstructure:"api_key"` // empty key selects the metadata provider
}

type SendGridConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// VendorConfig controls which marketplace accounts are in scope for
// onboarding classification.
type VendorConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Roles           []string `mapstructure:"roles"`
	AdminOnboarding bool     `mapstructure:"admin_onboarding"`
}

// ScheduleConfig controls the monthly reminder run.
type ScheduleConfig struct {
	RunDay        int    `mapstructure:"run_day"`        // day of month, 1-28
	CheckInterval string `mapstructure:"check_interval"` // how often the worker wakes up
}

type AdminConfig struct {
	Token    string `mapstructure:"token"`
	NonceTTL string `mapstructure:"nonce_ttl"`
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Directory string `mapstructure:"directory"` // when set, a dated log file is written here
}

// Load reads configuration from .env, config files and the environment.
func Load() (*Config, error) {
	// .env is optional; system environment wins either way
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.SiteName == "" {
		cfg.App.SiteName = "Marketplace"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if len(cfg.Server.TrustedProxies) == 0 {
		cfg.Server.TrustedProxies = []string{"127.0.0.1"}
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if !viper.IsSet("vendors.enabled") {
		cfg.Vendors.Enabled = true
	}
	if len(cfg.Vendors.Roles) == 0 {
		cfg.Vendors.Roles = []string{models.RoleSeller, models.RoleVendor}
	}
	if cfg.Schedule.RunDay == 0 {
		cfg.Schedule.RunDay = 1
	}
	if cfg.Schedule.CheckInterval == "" {
		cfg.Schedule.CheckInterval = "1h"
	}
	if cfg.Admin.NonceTTL == "" {
		cfg.Admin.NonceTTL = "15m"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		if cfg.App.Environment == "production" {
			cfg.Logging.Format = "json"
		} else {
			cfg.Logging.Format = "console"
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Database.URL == "" {
		if cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database: either url or host/user/name must be set")
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
	}
	if cfg.Admin.Token == "" {
		return fmt.Errorf("admin: token must be set")
	}
	if cfg.Schedule.RunDay < 1 || cfg.Schedule.RunDay > 28 {
		return fmt.Errorf("schedule: run_day must be between 1 and 28, got %d", cfg.Schedule.RunDay)
	}
	return nil
}

// DSN builds the Postgres connection string from the configured parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}
