package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/spf13/viper"
)

// Config holds all Cloud Cost Monitor configuration.
type Config struct {
	Monitor    MonitorConfig               `mapstructure:"monitor"`
	Storage    StorageConfig               `mapstructure:"storage"`
	Providers  []ProviderConfig            `mapstructure:"providers"`
	Thresholds []model.AlertThreshold      `mapstructure:"thresholds"`
	Channels   []model.NotificationChannel `mapstructure:"channels"`
	Server     ServerConfig                `mapstructure:"server"`
	Logging    LoggingConfig               `mapstructure:"logging"`
}

// MonitorConfig defines the tick loop.
type MonitorConfig struct {
	Interval            time.Duration `mapstructure:"interval"`
	Schedule            string        `mapstructure:"schedule"`
	RetentionDays       int           `mapstructure:"retention_days"`
	ProviderTimeout     time.Duration `mapstructure:"provider_timeout"`
	NotificationTimeout time.Duration `mapstructure:"notification_timeout"`
}

// StorageConfig defines the local cost ledger database.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// Provider types understood by Build.
const (
	ProviderStatic = "static"
	ProviderLedger = "ledger"
	ProviderAWS    = "aws"
)

// ProviderConfig defines one cost data source.
type ProviderConfig struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`

	// Path is the YAML cost file for static providers, or an alternate
	// ledger database for ledger providers.
	Path string `mapstructure:"path"`

	Profile         string `mapstructure:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// ServerConfig defines the HTTP control surface.
type ServerConfig struct {
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".ccm"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("monitor.interval", "5m")
	v.SetDefault("monitor.schedule", "")
	v.SetDefault("monitor.retention_days", 30)
	v.SetDefault("monitor.provider_timeout", "30s")
	v.SetDefault("monitor.notification_timeout", "10s")
	v.SetDefault("storage.path", filepath.Join(home, ".ccm", "ledger.db"))
	v.SetDefault("server.listen", ":8090")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("CCM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
