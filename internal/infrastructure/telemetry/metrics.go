package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration // Default: 60s
	ServiceName       string
	Insecure          bool
}

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   MetricsConfig
}

// NewMeterProvider creates and configures a new MeterProvider.
// If metrics are disabled the global no-op meter stays in place.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	exportInterval := cfg.ExportInterval
	if exportInterval == 0 {
		exportInterval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval)),
		),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", exportInterval),
	)

	return mp, nil
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Meter returns a named meter from the provider, or the global one when disabled.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are enabled.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.config.Enabled && mp.provider != nil
}

// =============================================================================
// Supply API metrics
// =============================================================================

// Metric attribute keys
var (
	AttrOperation   = attribute.Key("supply.operation")
	AttrStatusCode  = attribute.Key("http.status_code")
	AttrOutcome     = attribute.Key("supply.outcome")
	AttrEnvironment = attribute.Key("supply.environment")
)

// SupplyDurationBuckets are bucket boundaries for supply call duration (seconds).
var SupplyDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// Outcome values for AttrOutcome
const (
	OutcomeSuccess      = "success"
	OutcomeUpstream     = "upstream_error"
	OutcomeNetwork      = "network_error"
	OutcomeNotAttempted = "not_attempted"
)

// SupplyMetrics records calls made to the supply API.
// A nil *SupplyMetrics records nothing.
type SupplyMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	retries  metric.Int64Counter
}

// NewSupplyMetrics creates the supply instruments on the given meter
func NewSupplyMetrics(meter metric.Meter) (*SupplyMetrics, error) {
	requests, err := meter.Int64Counter("supply_requests_total",
		metric.WithDescription("Supply API requests by operation and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter supply_requests_total: %w", err)
	}

	duration, err := meter.Float64Histogram("supply_request_duration_seconds",
		metric.WithDescription("Supply API request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(SupplyDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram supply_request_duration_seconds: %w", err)
	}

	retries, err := meter.Int64Counter("supply_read_retries_total",
		metric.WithDescription("Retried supply API reads"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter supply_read_retries_total: %w", err)
	}

	return &SupplyMetrics{requests: requests, duration: duration, retries: retries}, nil
}

// RecordRequest records one supply call. status is 0 when no response arrived.
func (m *SupplyMetrics) RecordRequest(ctx context.Context, operation, outcome string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
		AttrStatusCode.String(strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	if outcome != OutcomeNotAttempted {
		m.duration.Record(ctx, d.Seconds(), attrs)
	}
}

// RecordRetry records one retried read
func (m *SupplyMetrics) RecordRetry(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.retries.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation)))
}
