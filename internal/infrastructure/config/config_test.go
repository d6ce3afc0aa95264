package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// managedEnv lists every variable the tests touch
var managedEnv = []string{
	"EXCURSIONS_APP_NAME",
	"EXCURSIONS_APP_ENV",
	"EXCURSIONS_APP_PORT",
	"EXCURSIONS_SUPPLY_ENVIRONMENT",
	"EXCURSIONS_SUPPLY_SANDBOX_API_KEY",
	"EXCURSIONS_SUPPLY_PRODUCTION_API_KEY",
	"EXCURSIONS_SUPPLY_TIMEOUT",
	"EXCURSIONS_SUPPLY_READ_RETRIES",
	"EXCURSIONS_SUPPLY_RATE_LIMIT",
	"EXCURSIONS_BOOKING_DUPLICATE_GUARD_ENABLED",
	"EXCURSIONS_HTTP_CORS_ALLOW_ORIGINS",
	"EXCURSIONS_TELEMETRY_SAMPLING_RATIO",
	"EXCURSIONS_TELEMETRY_SERVICE_NAME",
	"EXCURSIONS_TELEMETRY_PROFILING_ENABLED",
	"EXCURSIONS_TELEMETRY_PROFILING_SERVER_ADDRESS",
	"EXCURSIONS_TELEMETRY_PROFILING_PROFILE_TYPES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "excursions", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "sandbox", cfg.Supply.Environment)
		assert.Empty(t, cfg.Supply.APIKey())
		assert.Equal(t, 30*time.Second, cfg.Supply.Timeout)
		assert.Equal(t, 2, cfg.Supply.ReadRetries)
		assert.Equal(t, "USD", cfg.Supply.DefaultCurrency)
		assert.Equal(t, "en-US", cfg.Supply.DefaultLanguage)
		assert.True(t, cfg.Booking.DuplicateGuardEnabled)
		assert.Equal(t, 24*time.Hour, cfg.Booking.DuplicateGuardTTL)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})

	t.Run("loads values from environment variables with EXCURSIONS prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EXCURSIONS_APP_NAME", "test-app")
		t.Setenv("EXCURSIONS_APP_PORT", "9000")
		t.Setenv("EXCURSIONS_SUPPLY_SANDBOX_API_KEY", "sandbox-key")
		t.Setenv("EXCURSIONS_SUPPLY_TIMEOUT", "5s")
		t.Setenv("EXCURSIONS_SUPPLY_READ_RETRIES", "0")
		t.Setenv("EXCURSIONS_SUPPLY_RATE_LIMIT", "2.5")
		t.Setenv("EXCURSIONS_BOOKING_DUPLICATE_GUARD_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sandbox-key", cfg.Supply.APIKey())
		assert.Equal(t, 5*time.Second, cfg.Supply.Timeout)
		assert.Equal(t, 0, cfg.Supply.ReadRetries)
		assert.InDelta(t, 2.5, cfg.Supply.RateLimit, 0.0001)
		assert.False(t, cfg.Booking.DuplicateGuardEnabled)
	})

	t.Run("selects the key of the active environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EXCURSIONS_SUPPLY_ENVIRONMENT", "PRODUCTION")
		t.Setenv("EXCURSIONS_SUPPLY_SANDBOX_API_KEY", "sandbox-key")
		t.Setenv("EXCURSIONS_SUPPLY_PRODUCTION_API_KEY", "prod-key")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.Supply.Environment)
		assert.Equal(t, "prod-key", cfg.Supply.APIKey())
	})

	t.Run("rejects unknown supply environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EXCURSIONS_SUPPLY_ENVIRONMENT", "staging")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "supply.environment")
	})

	t.Run("rejects negative retries", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EXCURSIONS_SUPPLY_READ_RETRIES", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read_retries cannot be negative")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EXCURSIONS_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_Profiling(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want ProfilingConfig
	}{
		{
			name: "disabled by default",
			want: ProfilingConfig{ServerAddress: "http://localhost:4040", ApplicationName: "excursions"},
		},
		{
			name: "enabled from environment",
			env: map[string]string{
				"EXCURSIONS_TELEMETRY_SERVICE_NAME":             "excursions-api",
				"EXCURSIONS_TELEMETRY_PROFILING_ENABLED":        "true",
				"EXCURSIONS_TELEMETRY_PROFILING_SERVER_ADDRESS": "http://pyroscope:4040",
				"EXCURSIONS_TELEMETRY_PROFILING_PROFILE_TYPES":  "cpu goroutines",
			},
			want: ProfilingConfig{
				Enabled:         true,
				ServerAddress:   "http://pyroscope:4040",
				ApplicationName: "excursions-api",
				ProfileTypes:    []string{"cpu", "goroutines"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want.Enabled, cfg.Telemetry.Profiling.Enabled)
			assert.Equal(t, tt.want.ServerAddress, cfg.Telemetry.Profiling.ServerAddress)
			assert.Equal(t, tt.want.ApplicationName, cfg.Telemetry.Profiling.ApplicationName)
			if len(tt.want.ProfileTypes) > 0 {
				assert.Equal(t, tt.want.ProfileTypes, cfg.Telemetry.Profiling.ProfileTypes)
			} else {
				assert.Empty(t, cfg.Telemetry.Profiling.ProfileTypes)
			}
		})
	}
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("EXCURSIONS_APP_ENV", "production")
		t.Setenv("EXCURSIONS_SUPPLY_ENVIRONMENT", "production")
		t.Setenv("EXCURSIONS_SUPPLY_PRODUCTION_API_KEY", "prod-key")
	}

	t.Run("requires production supply environment", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		t.Setenv("EXCURSIONS_SUPPLY_ENVIRONMENT", "sandbox")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "supply.environment must be 'production' in production")
	})

	t.Run("requires production api key", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		os.Unsetenv("EXCURSIONS_SUPPLY_PRODUCTION_API_KEY")
		t.Setenv("EXCURSIONS_SUPPLY_SANDBOX_API_KEY", "sandbox-key")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "supply.production_api_key is required")
	})

	t.Run("rejects wildcard CORS origin", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		t.Setenv("EXCURSIONS_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}
