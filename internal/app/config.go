package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dilg-vantage/vantage-backend/internal/platform/envutil"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
)

type Config struct {
	Port           string
	LogMode        string
	Environment    string
	ServiceName    string
	Version        string
	AllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// fileConfig is the optional YAML overlay (CONFIG_FILE). Environment
// variables win over the file; the file wins over defaults.
type fileConfig struct {
	Port           string   `yaml:"port"`
	LogMode        string   `yaml:"log_mode"`
	Environment    string   `yaml:"environment"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RedisAddr      string   `yaml:"redis_addr"`
}

func LoadConfig(log *logger.Logger) Config {
	// Missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "error", err)
	}

	cfg := Config{
		Port:           "8080",
		LogMode:        "development",
		Environment:    "development",
		ServiceName:    "vantage-backend",
		Version:        envutil.Str("SERVICE_VERSION", "dev"),
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		RedisDB:        envutil.Int("REDIS_DB", 0),
	}

	if path := envutil.Str("CONFIG_FILE", ""); path != "" {
		if err := applyFileConfig(&cfg, path); err != nil {
			log.Warn("config file ignored", "path", path, "error", err)
		}
	}

	cfg.Port = envutil.Str("PORT", cfg.Port)
	cfg.LogMode = envutil.Str("LOG_MODE", cfg.LogMode)
	cfg.Environment = envutil.Str("ENVIRONMENT", cfg.Environment)
	if origins := envutil.Str("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitAndTrim(origins)
	}
	cfg.RedisAddr = envutil.Str("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envutil.Str("REDIS_PASSWORD", "")
	return cfg
}

func applyFileConfig(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.LogMode != "" {
		cfg.LogMode = fc.LogMode
	}
	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.RedisAddr != "" {
		cfg.RedisAddr = fc.RedisAddr
	}
	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
