package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the ledger server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
	Token    TokenConfig    `mapstructure:"token"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RewardsConfig contains the bonus amounts granted by the ledger
type RewardsConfig struct {
	ReferralBonus int64 `mapstructure:"referral_bonus"`
	WelcomeBonus  int64 `mapstructure:"welcome_bonus"`
}

// TokenConfig contains token metadata used when converting points to
// on-chain token units at withdrawal time
type TokenConfig struct {
	Name     string `mapstructure:"name"`
	Symbol   string `mapstructure:"symbol"`
	Decimals int32  `mapstructure:"decimals"`
}

// AuthConfig contains authentication settings for the HTTP facade
type AuthConfig struct {
	AdminJWTSecret string `mapstructure:"admin_jwt_secret"`
	AdminIssuer    string `mapstructure:"admin_issuer"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.request_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "airdrop_ledger")

	// Reward defaults
	viper.SetDefault("rewards.referral_bonus", 25)
	viper.SetDefault("rewards.welcome_bonus", 0)

	// Token defaults
	viper.SetDefault("token.name", "LFE")
	viper.SetDefault("token.symbol", "LFE")
	viper.SetDefault("token.decimals", 18)

	// Auth defaults
	viper.SetDefault("auth.admin_issuer", "airdrop-ledger")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if config.Rewards.ReferralBonus < 0 {
		return fmt.Errorf("rewards.referral_bonus must not be negative")
	}
	if config.Rewards.WelcomeBonus < 0 {
		return fmt.Errorf("rewards.welcome_bonus must not be negative")
	}
	if config.Token.Decimals < 0 {
		return fmt.Errorf("token.decimals must not be negative")
	}
	if config.Auth.AdminJWTSecret == "" {
		return fmt.Errorf("auth.admin_jwt_secret is required")
	}
	return nil
}
