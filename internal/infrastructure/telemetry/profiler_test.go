package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	cfg := ProfilerConfig{ServerAddress: "http://localhost:4040", ApplicationName: "excursions-test"}

	profiler, err := NewProfiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, profiler.IsEnabled())
	assert.Equal(t, cfg, profiler.GetConfig())
	assert.NoError(t, profiler.Stop())
	assert.NoError(t, profiler.Stop(), "stop is idempotent")
}

func TestNewProfiler_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProfilerConfig
		wantErr string
	}{
		{
			name:    "missing server address",
			cfg:     ProfilerConfig{Enabled: true, ApplicationName: "excursions-test"},
			wantErr: "server address is required",
		},
		{
			name:    "missing application name",
			cfg:     ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
		{
			name: "unknown profile type",
			cfg: ProfilerConfig{
				Enabled:         true,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "excursions-test",
				ProfileTypes:    []string{"cpu", "heap"},
			},
			wantErr: `unknown profile type "heap"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiler, err := NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, profiler)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseProfileTypes(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []pyroscope.ProfileType
	}{
		{name: "empty selects defaults", names: nil, want: defaultProfileTypes},
		{name: "case and spaces ignored", names: []string{" CPU ", "Mutex_Count"}, want: []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileMutexCount}},
		{name: "duplicates collapsed", names: []string{"cpu", "cpu", "goroutines"}, want: []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileGoroutines}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProfileTypes(tt.names)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
		want   []string
	}{
		{name: "nil", labels: nil, want: nil},
		{
			name:   "sorted by key",
			labels: map[string]string{"route": "/api/v1/excursions/search", "method": "GET"},
			want:   []string{"method", "GET", "route", "/api/v1/excursions/search"},
		},
		{
			name:   "drops empty values and reference labels",
			labels: map[string]string{"operation": "cart.book", "partner_cart_ref": "CART-1", "Request-ID": "abc", "resource": ""},
			want:   []string{"operation", "cart.book"},
		},
		{
			name:   "normalises keys",
			labels: map[string]string{"Supply Environment": "sandbox", "!!": "x"},
			want:   []string{"supply_environment", "sandbox"},
		},
		{
			name:   "truncates long values",
			labels: map[string]string{"route": strings.Repeat("a", MaxLabelValueLength+10)},
			want:   []string{"route", strings.Repeat("a", MaxLabelValueLength)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeLabels(tt.labels))
		})
	}
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("labels are visible inside fn", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), SupplyOperationLabels("availability.check"), func(ctx context.Context) {
			called = true
			value, ok := pprof.Label(ctx, ProfilingLabelOperation)
			assert.True(t, ok)
			assert.Equal(t, "availability.check", value)
		})
		assert.True(t, called)
	})

	t.Run("no labels passes the context through", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), struct{}{}, "marker")
		WithProfilingLabels(ctx, map[string]string{"request_id": "r-1"}, func(got context.Context) {
			assert.Equal(t, ctx, got)
		})
	})
}
