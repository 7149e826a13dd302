package config

import (
	"fmt"
	"time"

	"github.com/kbukum/bitbucket/logger"
	"github.com/kbukum/bitbucket/util"
)

const (
	// DefaultBaseURL is the Bitbucket Cloud REST API endpoint.
	DefaultBaseURL = "https://api.bitbucket.org/2.0"

	defaultTimeout         = 30 * time.Second
	defaultMaxResponseSize = "10MB"
)

// AuthConfig holds the raw credential source values. Which values form a
// usable credential, and in what precedence, is decided by
// transport.ResolveCredentials — this struct only carries what was
// configured.
type AuthConfig struct {
	// OAuthToken is an OAuth bearer token (env: ATLASSIAN_OAUTH_TOKEN).
	OAuthToken string `yaml:"oauth_token" mapstructure:"oauth_token"`
	// AccessToken is an alternative bearer token source
	// (env: BITBUCKET_ACCESS_TOKEN). OAuthToken wins when both are set.
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`

	// SiteName is the Atlassian site name (env: ATLASSIAN_SITE_NAME). Optional.
	SiteName string `yaml:"site_name" mapstructure:"site_name"`
	// UserEmail is the Atlassian account email (env: ATLASSIAN_USER_EMAIL).
	UserEmail string `yaml:"user_email" mapstructure:"user_email"`
	// APIToken is the Atlassian API token (env: ATLASSIAN_API_TOKEN).
	APIToken string `yaml:"api_token" mapstructure:"api_token"`

	// Username is the Bitbucket username (env: ATLASSIAN_BITBUCKET_USERNAME).
	Username string `yaml:"username" mapstructure:"username"`
	// AppPassword is the Bitbucket app password
	// (env: ATLASSIAN_BITBUCKET_APP_PASSWORD).
	AppPassword string `yaml:"app_password" mapstructure:"app_password"`
}

// Config is the immutable client configuration.
type Config struct {
	// BaseURL is the API endpoint. Defaults to DefaultBaseURL; overridable
	// for tests (env: BITBUCKET_BASE_URL).
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the default per-request timeout (env: BITBUCKET_TIMEOUT,
	// Go duration syntax). Defaults to 30s. Requests may override it.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxResponseSize is the response size cap as a human-readable size
	// string, e.g. "10MB" (env: BITBUCKET_MAX_RESPONSE_SIZE). Responses
	// declaring a larger Content-Length are rejected before the body is read.
	MaxResponseSize string `yaml:"max_response_size" mapstructure:"max_response_size"`

	// Auth holds the credential source values.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Logging configures the client logger.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseSize == "" {
		c.MaxResponseSize = defaultMaxResponseSize
	}
	c.Logging.ApplyDefaults()
}

// Validate checks that the configuration is usable. Credential absence is
// not an error here: an unauthenticated Config is valid and surfaces as an
// auth-missing failure only when an operation is attempted.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive (got: %s)", c.Timeout)
	}
	if c.MaxResponseBytes() <= 0 {
		return fmt.Errorf("config: max_response_size must be positive (got: %s)", c.MaxResponseSize)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: logging: %w", err)
	}
	return nil
}

// MaxResponseBytes returns the response size cap in bytes.
func (c *Config) MaxResponseBytes() int64 {
	return util.ParseSize(c.MaxResponseSize, 0)
}
