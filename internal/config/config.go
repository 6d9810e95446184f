package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/citimr/aid-portal/internal/mail"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AuthConfig holds token and access-code configuration
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	AdminAccessCode string        `mapstructure:"admin_access_code"`
}

// MailConfig holds mail relay configuration
type MailConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	ServiceID  string        `mapstructure:"service_id"`
	TemplateID string        `mapstructure:"template_id"`
	PublicKey  string        `mapstructure:"public_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	AdminCopy  string        `mapstructure:"admin_copy"`
}

// RelayConfig converts the section to the mail package config.
func (c MailConfig) RelayConfig() mail.Config {
	return mail.Config{
		Endpoint:   c.Endpoint,
		ServiceID:  c.ServiceID,
		TemplateID: c.TemplateID,
		PublicKey:  c.PublicKey,
		Timeout:    c.Timeout,
	}
}

// StorageConfig holds attachment storage configuration
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
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

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/aidportal.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Auth defaults
	viper.SetDefault("auth.token_ttl", 12*time.Hour)

	// Mail defaults
	viper.SetDefault("mail.endpoint", "")
	viper.SetDefault("mail.timeout", 10*time.Second)

	// Storage defaults
	viper.SetDefault("storage.upload_dir", "data/uploads")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("auth.jwt_secret", "AID_JWT_SECRET")
	viper.BindEnv("auth.admin_access_code", "AID_ADMIN_ACCESS_CODE")
	viper.BindEnv("mail.service_id", "MAIL_SERVICE_ID")
	viper.BindEnv("mail.template_id", "MAIL_TEMPLATE_ID")
	viper.BindEnv("mail.public_key", "MAIL_PUBLIC_KEY")
	viper.BindEnv("mail.admin_copy", "MAIL_ADMIN_COPY")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.AdminAccessCode == "" {
		return fmt.Errorf("auth.admin_access_code is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}

	// Mail relay is optional, but partial credentials are a misconfiguration.
	if c.Mail.Endpoint != "" {
		if c.Mail.ServiceID == "" || c.Mail.TemplateID == "" || c.Mail.PublicKey == "" {
			return fmt.Errorf("mail.service_id, mail.template_id and mail.public_key are required when mail.endpoint is set")
		}
	}

	return nil
}
