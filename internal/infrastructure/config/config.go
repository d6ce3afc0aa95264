package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Supply    SupplyConfig
	Booking   BookingConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// SupplyConfig holds the supply API settings. Only the key for the active
// environment is used.
type SupplyConfig struct {
	Environment      string // sandbox, production
	SandboxAPIKey    string
	ProductionAPIKey string
	BaseURL          string // overrides the environment default when set
	Timeout          time.Duration
	RateLimit        float64 // outbound requests per second, 0 disables
	RateBurst        int
	ReadRetries      int           // retries for idempotent reads
	RetryInterval    time.Duration // initial backoff interval
	DefaultCurrency  string
	DefaultLanguage  string
}

// APIKey returns the key configured for the active environment
func (s SupplyConfig) APIKey() string {
	if s.Environment == "production" {
		return s.ProductionAPIKey
	}
	return s.SandboxAPIKey
}

// BookingConfig holds cart booking settings
type BookingConfig struct {
	DuplicateGuardEnabled bool
	DuplicateGuardTTL     time.Duration
}

// CacheConfig holds catalog lookup cache settings
type CacheConfig struct {
	Enabled        bool
	ProductTTL     time.Duration
	DestinationTTL time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	MetricsEnabled    bool    // Whether to export metrics
	LogsEnabled       bool    // Whether to bridge zap logs to the collector
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	Profiling         ProfilingConfig
}

// ProfilingConfig holds Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string // Pyroscope server (e.g., "http://localhost:4040")
	ApplicationName   string // Defaults to the telemetry service name
	BasicAuthUser     string
	BasicAuthPassword string
	ProfileTypes      []string // e.g. ["cpu", "alloc_space", "goroutines"]
	SpanProfiles      bool     // Link CPU profiles to trace spans
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with EXCURSIONS_ prefix (e.g., EXCURSIONS_SUPPLY_SANDBOX_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("EXCURSIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Values whose zero is meaningful need an explicit viper default
	v.SetDefault("booking.duplicate_guard_enabled", true)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("supply.read_retries", 2)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Supply: SupplyConfig{
			Environment:      strings.ToLower(v.GetString("supply.environment")),
			SandboxAPIKey:    v.GetString("supply.sandbox_api_key"),
			ProductionAPIKey: v.GetString("supply.production_api_key"),
			BaseURL:          v.GetString("supply.base_url"),
			Timeout:          v.GetDuration("supply.timeout"),
			RateLimit:        v.GetFloat64("supply.rate_limit"),
			RateBurst:        v.GetInt("supply.rate_burst"),
			ReadRetries:      v.GetInt("supply.read_retries"),
			RetryInterval:    v.GetDuration("supply.retry_interval"),
			DefaultCurrency:  v.GetString("supply.default_currency"),
			DefaultLanguage:  v.GetString("supply.default_language"),
		},
		Booking: BookingConfig{
			DuplicateGuardEnabled: v.GetBool("booking.duplicate_guard_enabled"),
			DuplicateGuardTTL:     v.GetDuration("booking.duplicate_guard_ttl"),
		},
		Cache: CacheConfig{
			Enabled:        v.GetBool("cache.enabled"),
			ProductTTL:     v.GetDuration("cache.product_ttl"),
			DestinationTTL: v.GetDuration("cache.destination_ttl"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			Profiling: ProfilingConfig{
				Enabled:           v.GetBool("telemetry.profiling.enabled"),
				ServerAddress:     v.GetString("telemetry.profiling.server_address"),
				ApplicationName:   v.GetString("telemetry.profiling.application_name"),
				BasicAuthUser:     v.GetString("telemetry.profiling.basic_auth_user"),
				BasicAuthPassword: v.GetString("telemetry.profiling.basic_auth_password"),
				ProfileTypes:      v.GetStringSlice("telemetry.profiling.profile_types"),
				SpanProfiles:      v.GetBool("telemetry.profiling.span_profiles"),
			},
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "excursions"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Supply.Environment == "" {
		cfg.Supply.Environment = "sandbox"
	}
	if cfg.Supply.Timeout == 0 {
		cfg.Supply.Timeout = 30 * time.Second
	}
	if cfg.Supply.RateBurst == 0 {
		cfg.Supply.RateBurst = 5
	}
	if cfg.Supply.RetryInterval == 0 {
		cfg.Supply.RetryInterval = 200 * time.Millisecond
	}
	if cfg.Supply.DefaultCurrency == "" {
		cfg.Supply.DefaultCurrency = "USD"
	}
	if cfg.Supply.DefaultLanguage == "" {
		cfg.Supply.DefaultLanguage = "en-US"
	}
	if cfg.Booking.DuplicateGuardTTL == 0 {
		cfg.Booking.DuplicateGuardTTL = 24 * time.Hour
	}
	if cfg.Cache.ProductTTL == 0 {
		cfg.Cache.ProductTTL = 15 * time.Minute
	}
	if cfg.Cache.DestinationTTL == 0 {
		cfg.Cache.DestinationTTL = 6 * time.Hour
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Supply calls can take up to the supply timeout plus retries
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// An empty origin list means no cross-origin requests are allowed until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Accept-Language", "X-Request-ID"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "excursions"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.Profiling.ServerAddress == "" {
		cfg.Telemetry.Profiling.ServerAddress = "http://localhost:4040"
	}
	if cfg.Telemetry.Profiling.ApplicationName == "" {
		cfg.Telemetry.Profiling.ApplicationName = cfg.Telemetry.ServiceName
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Supply.Environment {
	case "sandbox", "production":
	default:
		return fmt.Errorf("supply.environment must be 'sandbox' or 'production', got %q", c.Supply.Environment)
	}
	if c.Supply.RateLimit < 0 {
		return fmt.Errorf("supply.rate_limit cannot be negative")
	}
	if c.Supply.ReadRetries < 0 {
		return fmt.Errorf("supply.read_retries cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Supply.Environment != "production" {
			return fmt.Errorf("supply.environment must be 'production' in production")
		}
		if c.Supply.APIKey() == "" {
			return fmt.Errorf("supply.production_api_key is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
