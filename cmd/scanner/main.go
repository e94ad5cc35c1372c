// Package main is the entry point for the cross-exchange arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"

	arbitrageApp "github.com/fd1az/arb-scanner/business/arbitrage/app"
	arbitrageInfra "github.com/fd1az/arb-scanner/business/arbitrage/infra"
	"github.com/fd1az/arb-scanner/business/arbitrage/infra/cmc"
	"github.com/fd1az/arb-scanner/business/arbitrage/infra/telegram"
	exchangeApp "github.com/fd1az/arb-scanner/business/exchange/app"
	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
	"github.com/fd1az/arb-scanner/business/exchange/infra/binance"
	"github.com/fd1az/arb-scanner/business/exchange/infra/kucoin"
	"github.com/fd1az/arb-scanner/internal/apm"
	"github.com/fd1az/arb-scanner/internal/config"
	"github.com/fd1az/arb-scanner/internal/health"
	"github.com/fd1az/arb-scanner/internal/logger"
	"github.com/fd1az/arb-scanner/internal/metrics"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arb-scanner %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	traceIDFn := func(ctx context.Context) string {
		if span := trace.SpanContextFromContext(ctx); span.HasTraceID() {
			return span.TraceID().String()
		}
		return ""
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, traceIDFn)
	log.Info(ctx, "starting arbitrage scanner",
		"version", version,
		"environment", cfg.App.Environment,
	)

	// Observability is opt-in; the engine's instruments fall back to
	// no-op providers when disabled.
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin")

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	names, connectors, err := buildConnectors(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, conn := range connectors {
			if cerr := conn.Close(); cerr != nil {
				log.Warn(ctx, "connector close failed", "error", cerr)
			}
		}
	}()

	ranker, err := buildRanker(cfg)
	if err != nil {
		return err
	}

	reporters, err := buildReporters(cfg)
	if err != nil {
		return err
	}

	symbols, err := parseTargetSymbols(cfg.Arbitrage.TargetSymbolList())
	if err != nil {
		return err
	}

	engine, err := arbitrageApp.NewEngine(arbitrageApp.EngineConfig{
		Capital:           cfg.Arbitrage.InitialCapitalDecimal(),
		MinProfitPct:      cfg.Arbitrage.MinProfitPctDecimal(),
		MaxSlippagePct:    cfg.Arbitrage.MaxSlippagePctDecimal(),
		SlippageCap:       cfg.Arbitrage.SlippageCap,
		TargetSymbols:     symbols,
		ScanInterval:      cfg.Arbitrage.ScanInterval,
		OrderBookDepth:    cfg.Arbitrage.OrderBookDepth,
		FeeMaxAge:         cfg.Arbitrage.FeeRefreshMaxAge,
		RetryAfterCycles:  cfg.Arbitrage.RetryAfterCycles,
		MaxLoggedFailures: cfg.Arbitrage.MaxLoggedFailures,
		StartRank:         cfg.Ranking.StartRank,
		EndRank:           cfg.Ranking.EndRank,
	}, names, connectors, ranker, reporters, log)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	for _, name := range names {
		if !cfg.Exchanges[name].StreamEnabled {
			continue
		}
		streamer, ok := connectors[name].(exchangeApp.Streamer)
		if !ok {
			log.Warn(ctx, "streaming enabled but connector cannot stream", "exchange", name)
			continue
		}
		engine.AttachStreamer(name, streamer)
	}

	healthServer := health.NewServer(cfg.App.HealthPort, version)
	healthServer.RegisterCheck("engine", func(ctx context.Context) (bool, string) {
		if engine.Healthy(time.Now()) {
			return true, "scanning"
		}
		return false, "scan loop stalled"
	})
	healthServer.RegisterStatus(func(ctx context.Context) any {
		return engine.Report()
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.App.HealthPort)
	}
	defer healthServer.Stop(context.Background())

	return engine.Run(ctx)
}

// buildConnectors constructs and initializes one connector per enabled
// exchange, preserving a stable evaluation order.
func buildConnectors(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) ([]string, map[string]exchangeApp.Connector, error) {
	connectors := make(map[string]exchangeApp.Connector)
	var names []string

	for _, name := range []string{binance.Name, kucoin.Name} {
		exCfg, ok := cfg.Exchanges[name]
		if !ok || !exCfg.Enabled {
			continue
		}

		var (
			conn exchangeApp.Connector
			err  error
		)
		switch name {
		case binance.Name:
			conn, err = binance.New(binance.Config{
				APIKey:         exCfg.APIKey,
				APISecret:      exCfg.APISecret,
				RequestsPerMin: exCfg.RequestsPerMin,
				MaxInFlight:    exCfg.MaxInFlight,
			}, log)
		case kucoin.Name:
			conn, err = kucoin.New(kucoin.Config{
				APIKey:         exCfg.APIKey,
				APISecret:      exCfg.APISecret,
				APIPassphrase:  exCfg.APIPassphrase,
				RequestsPerMin: exCfg.RequestsPerMin,
				MaxInFlight:    exCfg.MaxInFlight,
			}, log)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build %s connector: %w", name, err)
		}

		if err := conn.Initialize(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize %s connector: %w", name, err)
		}

		connectors[name] = conn
		names = append(names, name)
		log.Info(ctx, "connector ready", "exchange", name)
	}

	if len(names) < 2 {
		return nil, nil, fmt.Errorf("at least two exchanges must be enabled, got %d", len(names))
	}

	return names, connectors, nil
}

// buildRanker wires the CMC ranker when an API key is configured.
func buildRanker(cfg *config.Config) (arbitrageApp.Ranker, error) {
	if cfg.Ranking.APIKey == "" {
		return nil, nil
	}
	ranker, err := cmc.New(cmc.Config{APIKey: cfg.Ranking.APIKey})
	if err != nil {
		return nil, err
	}
	return ranker, nil
}

// buildReporters wires the console reporter plus Telegram when enabled.
func buildReporters(cfg *config.Config) ([]arbitrageApp.Reporter, error) {
	reporters := []arbitrageApp.Reporter{arbitrageInfra.NewConsoleReporter()}

	if cfg.Telegram.Enabled {
		notifier, err := telegram.New(telegram.Config{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build telegram notifier: %w", err)
		}
		reporters = append(reporters, notifier)
	}

	return reporters, nil
}

func parseTargetSymbols(raw []string) ([]exchange.Symbol, error) {
	symbols := make([]exchange.Symbol, 0, len(raw))
	for _, s := range raw {
		symbol, err := exchange.ParseSymbol(s)
		if err != nil {
			return nil, fmt.Errorf("invalid target symbol %q: %w", s, err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, nil
}
