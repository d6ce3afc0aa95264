package cli

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	excursionapp "github.com/sskmusic7/salt-life-excursions-sub001/internal/application/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/config"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/logger"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/supply"
)

const defaultTimeout = 60 * time.Second

type globalFlags struct {
	currency string
	language string
	timeout  time.Duration
}

// services holds what the commands need, built from config.toml and the environment
type services struct {
	search  *excursionapp.SearchService
	catalog *excursionapp.CatalogService
	locale  excursion.Locale
	log     *zap.Logger
}

func loadServices(flags *globalFlags) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Logs go to stderr so stdout stays clean for results
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	creds, err := supply.NewCredentials(
		cfg.Supply.Environment,
		cfg.Supply.SandboxAPIKey,
		cfg.Supply.ProductionAPIKey,
		cfg.Supply.BaseURL,
	)
	if err != nil {
		return nil, err
	}
	if !creds.Configured() {
		return nil, excursion.NewConfigurationError("no API key for %s environment", creds.Environment)
	}

	defaults := excursion.Locale{
		Currency: cfg.Supply.DefaultCurrency,
		Language: cfg.Supply.DefaultLanguage,
	}.WithDefaults()
	client, err := supply.NewClient(supply.Config{
		Credentials:   creds,
		Timeout:       cfg.Supply.Timeout,
		RateLimit:     cfg.Supply.RateLimit,
		RateBurst:     cfg.Supply.RateBurst,
		DefaultLocale: defaults,
	}, supply.WithLogger(log))
	if err != nil {
		return nil, err
	}

	locale, err := excursion.ParseLocale(
		strings.ToUpper(firstNonEmpty(flags.currency, defaults.Currency)),
		firstNonEmpty(flags.language, defaults.Language),
	)
	if err != nil {
		return nil, err
	}

	opts := []excursionapp.Option{
		excursionapp.WithReadRetries(cfg.Supply.ReadRetries, cfg.Supply.RetryInterval),
		excursionapp.WithLogger(log),
	}
	return &services{
		search:  excursionapp.NewSearchService(client, opts...),
		catalog: excursionapp.NewCatalogService(client, nil, excursionapp.CacheTTL{}, opts...),
		locale:  locale,
		log:     log,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
