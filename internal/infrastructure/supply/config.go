package supply

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

// Environment selects the supply API base URL and key
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

const (
	// ProductionBaseURL is the production partner API endpoint
	ProductionBaseURL = "https://api.viator.com/partner"
	// SandboxBaseURL is the sandbox partner API endpoint
	SandboxBaseURL = "https://api.sandbox.viator.com/partner"

	// AcceptHeader pins the partner API version
	AcceptHeader = "application/json;version=2.0"
	// APIKeyHeader carries the partner API key
	APIKeyHeader = "exp-api-key"

	defaultTimeout = 30 * time.Second
)

// ErrUnknownEnvironment is returned for environments other than sandbox and production
var ErrUnknownEnvironment = errors.New("supply: environment must be sandbox or production")

// ParseEnvironment parses an environment name, case-insensitively
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvironmentSandbox:
		return EnvironmentSandbox, nil
	case EnvironmentProduction:
		return EnvironmentProduction, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, s)
	}
}

// BaseURL returns the default base URL for the environment
func (e Environment) BaseURL() string {
	if e == EnvironmentProduction {
		return ProductionBaseURL
	}
	return SandboxBaseURL
}

// Credentials are resolved once at startup and never change afterwards
type Credentials struct {
	Environment Environment
	APIKey      string
	BaseURL     string
}

// NewCredentials picks the key of the active environment. The base URL
// override applies when set; otherwise the environment default is used.
func NewCredentials(env, sandboxKey, productionKey, baseURL string) (Credentials, error) {
	environment, err := ParseEnvironment(env)
	if err != nil {
		return Credentials{}, err
	}

	key := sandboxKey
	if environment == EnvironmentProduction {
		key = productionKey
	}
	if baseURL == "" {
		baseURL = environment.BaseURL()
	}

	return Credentials{
		Environment: environment,
		APIKey:      strings.TrimSpace(key),
		BaseURL:     strings.TrimRight(baseURL, "/"),
	}, nil
}

// Configured reports whether a key is present
func (c Credentials) Configured() bool {
	return c.APIKey != ""
}

// Config holds configuration for the supply API client
type Config struct {
	Credentials Credentials
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// RateLimit is the outbound request rate per second; 0 disables limiting
	RateLimit float64
	// RateBurst is the limiter bucket size
	RateBurst int
	// DefaultLocale fills currency and language missing from a request
	DefaultLocale excursion.Locale
}

// Validate checks the configuration and applies defaults.
// A missing API key is not an error here: the client reports it per call.
func (c *Config) Validate() error {
	if c.Credentials.Environment == "" {
		c.Credentials.Environment = EnvironmentSandbox
	}
	if _, err := ParseEnvironment(string(c.Credentials.Environment)); err != nil {
		return err
	}
	if c.Credentials.BaseURL == "" {
		c.Credentials.BaseURL = c.Credentials.Environment.BaseURL()
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RateLimit < 0 {
		return errors.New("supply: rate limit cannot be negative")
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	c.DefaultLocale = c.DefaultLocale.WithDefaults()
	return nil
}
