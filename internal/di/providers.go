package di

import (
	"fmt"

	drepo "KabuScan/internal/domain/repository"
	"KabuScan/internal/handler/api"
	internalrepo "KabuScan/internal/repository"
	"KabuScan/internal/service/ratelimit"
	"KabuScan/internal/service/yahoo"
	"KabuScan/internal/usecase"
	"KabuScan/pkg/cache"
	pkgch "KabuScan/pkg/clickhouse"
	"KabuScan/pkg/config"
	pkgkafka "KabuScan/pkg/kafka"
	xlogger "KabuScan/pkg/logger"
	"KabuScan/pkg/metrics"
	"KabuScan/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	level := cfg.Log.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Log.Format
	if format == "" {
		format = "console"
	}
	return xlogger.New(&xlogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideBarCache creates the bar cache: memory only, or layered over Redis
// when configured.
func ProvideBarCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	redis, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redis, 0), nil
}

// ProvideClickHouseClient creates a ClickHouse client when the bar source is
// ClickHouse; otherwise returns nil.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Source.Type != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarSource creates the configured daily-bar source.
func ProvideBarSource(cfg *config.Config, chClient *pkgch.Client, logger *xlogger.Logger) drepo.BarSource {
	if cfg.Source.Type == "clickhouse" {
		return internalrepo.NewClickHouseBarSource(chClient, cfg.ClickHouse.Table)
	}
	return yahoo.New(cfg.Source.BaseURL, cfg.Source.Timeout, logger)
}

// ProvideLimiter creates the fetch pacing limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	rps := cfg.Source.RateLimit
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Source.RateBurst
	if burst <= 0 {
		burst = rps
	}
	return ratelimit.New(burst, rps)
}

// ProvidePublisher creates the Kafka report publisher, or nil when disabled.
func ProvidePublisher(cfg *config.Config) (drepo.ResultPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideScanner creates the scan use case.
func ProvideScanner(
	source drepo.BarSource,
	cfg *config.Config,
	barCache cache.Service,
	limiter *ratelimit.Limiter,
	m drepo.Metrics,
	publisher drepo.ResultPublisher,
	logger *xlogger.Logger,
) *usecase.Scanner {
	return usecase.NewScanner(source, cfg.Source.Type, barCache, limiter, m, publisher, logger)
}

// ProvideMarketSummarizer creates the benchmark condition use case.
func ProvideMarketSummarizer(source drepo.BarSource, cfg *config.Config, logger *xlogger.Logger) *usecase.MarketSummarizer {
	return usecase.NewMarketSummarizer(source, cfg.Market.Benchmark, logger)
}

// ProvideScanHandler creates the HTTP handler.
func ProvideScanHandler(
	logger *xlogger.Logger,
	scanner *usecase.Scanner,
	market *usecase.MarketSummarizer,
	cfg *config.Config,
) *api.ScanHandler {
	base := usecase.ScanConfig{
		BatchSize:  cfg.Source.BatchSize,
		WindowDays: cfg.Source.WindowDays,
		ChunkDelay: cfg.Source.ChunkDelay,
		CacheTTL:   cfg.Source.CacheTTL,
	}
	return api.NewScanHandler(logger, scanner, market, cfg.Universe.Segments, base)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler *api.ScanHandler,
	barCache cache.Service,
	chClient *pkgch.Client,
	publisher drepo.ResultPublisher,
) *server.App {
	return server.New(cfg, logger, handler, barCache, chClient, publisher)
}
