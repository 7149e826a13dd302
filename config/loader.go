package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables they read from,
// in precedence order (first set wins).
var envBindings = map[string][]string{
	"base_url":          {"BITBUCKET_BASE_URL"},
	"timeout":           {"BITBUCKET_TIMEOUT"},
	"max_response_size": {"BITBUCKET_MAX_RESPONSE_SIZE"},
	"auth.oauth_token":  {"ATLASSIAN_OAUTH_TOKEN"},
	"auth.access_token": {"BITBUCKET_ACCESS_TOKEN"},
	"auth.site_name":    {"ATLASSIAN_SITE_NAME"},
	"auth.user_email":   {"ATLASSIAN_USER_EMAIL"},
	"auth.api_token":    {"ATLASSIAN_API_TOKEN"},
	"auth.username":     {"ATLASSIAN_BITBUCKET_USERNAME", "BITBUCKET_USERNAME"},
	"auth.app_password": {"ATLASSIAN_BITBUCKET_APP_PASSWORD", "BITBUCKET_APP_PASSWORD"},
	"logging.level":     {"BITBUCKET_LOG_LEVEL", "LOG_LEVEL"},
	"logging.format":    {"BITBUCKET_LOG_FORMAT", "LOG_FORMAT"},
	"logging.output":    {"BITBUCKET_LOG_OUTPUT", "LOG_OUTPUT"},
}

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string // YAML config file path (optional)
	EnvFile    string // .env file path (optional; defaults to ./.env if present)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit YAML config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load builds a Config from the environment, an optional .env file, and an
// optional YAML file. Precedence: environment > .env file > YAML > defaults.
// The returned Config is validated and ready to use.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	// Load .env before viper reads the environment so its values are visible.
	envFile := lc.EnvFile
	if envFile == "" && fileExists(".env") {
		envFile = ".env"
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read config file %s: %w", lc.ConfigFile, err)
		}
	}

	for key, envs := range envBindings {
		// viper's BindEnv takes the key followed by env var names in
		// precedence order.
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
