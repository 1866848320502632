// Package config loads service configuration.
//
// Sources, lowest priority first:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH, or config.yaml in the working directory)
//  3. .env file (loaded into the process environment by godotenv)
//  4. environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Security   SecurityConfig   `koanf:"security"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	SMTP       SMTPConfig       `koanf:"smtp"`
	Telegram   TelegramConfig   `koanf:"telegram"`
	Notify     NotifyConfig     `koanf:"notify"`
	Logging    LoggingConfig    `koanf:"logging"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

type DatabaseConfig struct {
	DSN         string `koanf:"dsn"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type SecurityConfig struct {
	JWTSecret  string        `koanf:"jwt_secret"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
}

type CloudinaryConfig struct {
	CloudName string `koanf:"cloud_name"`
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
	Folder    string `koanf:"folder"`
}

// Enabled reports whether all Cloudinary credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`
	UseTLS   bool   `koanf:"use_tls"`
}

// Enabled reports whether email delivery is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   int64  `koanf:"chat_id"`
}

// Enabled reports whether operator Telegram notifications are configured.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

type NotifyConfig struct {
	// Mode is "queue" (Redis outbox + worker) or "direct" (goroutine per notification).
	Mode     string `koanf:"mode"`
	Language string `koanf:"language"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  32 << 20,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			DSN:         "",
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			Enabled: true,
			Addr:    "localhost:6379",
		},
		Security: SecurityConfig{
			TokenTTL:   DefaultTokenTTL,
			BcryptCost: 10,
		},
		Cloudinary: CloudinaryConfig{
			Folder: "complaints",
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Crime Management System",
			UseTLS:   true,
		},
		Notify: NotifyConfig{
			Mode:     "queue",
			Language: DefaultLanguage,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file and the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Security.TokenTTL)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Notify.Mode {
	case "queue":
		if !c.Redis.Enabled {
			return errors.New("NOTIFY_MODE=queue requires REDIS_ENABLED=true")
		}
	case "direct":
	default:
		return fmt.Errorf("NOTIFY_MODE must be queue or direct, got %q", c.Notify.Mode)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{"server.cors_origins"}

// processSliceFields splits comma-separated env values for slice settings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envAliases maps well-known variable names onto config paths.
var envAliases = map[string]string{
	"port":                  "server.port",
	"cors_origins":          "server.cors_origins",
	"max_upload_bytes":      "server.max_upload_bytes",
	"rate_limit_reqs":       "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"database_url":          "database.dsn",
	"db_dsn":                "database.dsn",
	"db_auto_migrate":       "database.auto_migrate",
	"redis_enabled":         "redis.enabled",
	"redis_addr":            "redis.addr",
	"redis_password":        "redis.password",
	"redis_db":              "redis.db",
	"jwt_secret":            "security.jwt_secret",
	"token_ttl":             "security.token_ttl",
	"bcrypt_cost":           "security.bcrypt_cost",
	"cloudinary_cloud_name": "cloudinary.cloud_name",
	"cloudinary_api_key":    "cloudinary.api_key",
	"cloudinary_api_secret": "cloudinary.api_secret",
	"cloudinary_folder":     "cloudinary.folder",
	"smtp_host":             "smtp.host",
	"smtp_port":             "smtp.port",
	"smtp_user":             "smtp.user",
	"smtp_password":         "smtp.password",
	"smtp_from":             "smtp.from",
	"smtp_from_name":        "smtp.from_name",
	"smtp_use_tls":          "smtp.use_tls",
	"email_user":            "smtp.user",
	"email_pass":            "smtp.password",
	"telegram_bot_token":    "telegram.bot_token",
	"telegram_chat_id":      "telegram.chat_id",
	"notify_mode":           "notify.mode",
	"notify_language":       "notify.language",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
}

// envTransformFunc maps an environment variable name to a config path.
// Unknown variables return "" and are ignored by koanf.
func envTransformFunc(key string) string {
	return envAliases[strings.ToLower(key)]
}
