// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig                 `mapstructure:"app"`
	Arbitrage ArbitrageConfig           `mapstructure:"arbitrage"`
	Exchanges map[string]ExchangeConfig `mapstructure:"exchanges"`
	Ranking   RankingConfig             `mapstructure:"ranking"`
	Telegram  TelegramConfig            `mapstructure:"telegram"`
	Telemetry TelemetryConfig           `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	HealthPort  int    `mapstructure:"health_port"`
}

// ArbitrageConfig holds scan loop and profitability thresholds.
type ArbitrageConfig struct {
	InitialCapital    float64       `mapstructure:"initial_capital"`
	MinProfitPct      float64       `mapstructure:"min_profit_pct"`
	MaxSlippagePct    float64       `mapstructure:"max_slippage_pct"`
	SlippageCap       bool          `mapstructure:"slippage_cap"`
	TargetSymbols     []string      `mapstructure:"target_symbols"`
	ScanInterval      time.Duration `mapstructure:"scan_interval"`
	OrderBookDepth    int           `mapstructure:"order_book_depth"`
	FeeRefreshMaxAge  time.Duration `mapstructure:"fee_refresh_max_age"`
	RetryAfterCycles  int           `mapstructure:"retry_after_cycles"`
	MaxLoggedFailures int           `mapstructure:"max_logged_failures"`
}

// InitialCapitalDecimal returns the scan notional as decimal.Decimal.
func (c *ArbitrageConfig) InitialCapitalDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.InitialCapital)
}

// MinProfitPctDecimal returns min profit percentage as decimal.Decimal.
func (c *ArbitrageConfig) MinProfitPctDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPct)
}

// MaxSlippagePctDecimal returns max slippage percentage as decimal.Decimal.
func (c *ArbitrageConfig) MaxSlippagePctDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxSlippagePct)
}

// ExchangeConfig holds per-exchange credentials and throttle limits.
type ExchangeConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	APIKey         string `mapstructure:"api_key"`
	APISecret      string `mapstructure:"api_secret"`
	APIPassphrase  string `mapstructure:"api_passphrase"` // KuCoin only
	RequestsPerMin int    `mapstructure:"requests_per_min"`
	MaxInFlight    int    `mapstructure:"max_in_flight"`
	StreamEnabled  bool   `mapstructure:"stream_enabled"` // WS book-ticker feed (Binance)
}

// HasCredentials reports whether key and secret are both configured.
func (c ExchangeConfig) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// RankingConfig holds the coin-ranking collaborator settings for discovery.
type RankingConfig struct {
	APIKey    string `mapstructure:"api_key"`
	StartRank int    `mapstructure:"start_rank"`
	EndRank   int    `mapstructure:"end_rank"`
}

// TelegramConfig holds opportunity notification settings.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Arbitrage (legacy env names kept for compatibility with older deployments)
	v.BindEnv("arbitrage.initial_capital", "ARB_INITIAL_CAPITAL", "ARBITRAGE_INITIAL_CAPITAL")
	v.BindEnv("arbitrage.min_profit_pct", "ARB_MIN_PROFIT", "ARBITRAGE_MIN_PROFIT")
	v.BindEnv("arbitrage.max_slippage_pct", "ARB_MAX_SLIPPAGE", "ARBITRAGE_MAX_SLIPPAGE")
	v.BindEnv("arbitrage.target_symbols", "ARB_TARGET_SYMBOLS", "ARBITRAGE_TARGET_SYMBOLS")
	v.BindEnv("arbitrage.scan_interval", "ARB_SCAN_INTERVAL")
	v.BindEnv("arbitrage.retry_after_cycles", "ARB_RETRY_AFTER_CYCLES")

	// Exchanges
	v.BindEnv("exchanges.binance.api_key", "ARB_BINANCE_API_KEY", "BINANCE_API_KEY")
	v.BindEnv("exchanges.binance.api_secret", "ARB_BINANCE_API_SECRET", "BINANCE_API_SECRET")
	v.BindEnv("exchanges.kucoin.api_key", "ARB_KUCOIN_API_KEY", "KUCOIN_API_KEY")
	v.BindEnv("exchanges.kucoin.api_secret", "ARB_KUCOIN_API_SECRET", "KUCOIN_API_SECRET")
	v.BindEnv("exchanges.kucoin.api_passphrase", "ARB_KUCOIN_API_PASSPHRASE", "KUCOIN_API_PASSPHRASE")

	// Ranking
	v.BindEnv("ranking.api_key", "ARB_CMC_API_KEY", "CMC_API_KEY")
	v.BindEnv("ranking.start_rank", "ARB_START_RANK", "ARBITRAGE_START_RANK")
	v.BindEnv("ranking.end_rank", "ARB_END_RANK", "ARBITRAGE_END_RANK")

	// Telegram
	v.BindEnv("telegram.enabled", "ARB_TELEGRAM_ENABLED", "TELEGRAM_ENABLED")
	v.BindEnv("telegram.bot_token", "ARB_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "ARB_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arb-scanner")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_port", 8081)

	// Arbitrage defaults
	v.SetDefault("arbitrage.initial_capital", 1000.0)
	v.SetDefault("arbitrage.min_profit_pct", 0.5)
	v.SetDefault("arbitrage.max_slippage_pct", 0.5)
	v.SetDefault("arbitrage.slippage_cap", true)
	v.SetDefault("arbitrage.scan_interval", "10s")
	v.SetDefault("arbitrage.order_book_depth", 20)
	v.SetDefault("arbitrage.fee_refresh_max_age", "1h")
	v.SetDefault("arbitrage.retry_after_cycles", 0) // 0 = failed pairs stay excluded
	v.SetDefault("arbitrage.max_logged_failures", 10)

	// Exchange defaults
	v.SetDefault("exchanges.binance.enabled", true)
	v.SetDefault("exchanges.binance.requests_per_min", 1200)
	v.SetDefault("exchanges.binance.max_in_flight", 10)
	v.SetDefault("exchanges.binance.stream_enabled", false)
	v.SetDefault("exchanges.kucoin.enabled", true)
	v.SetDefault("exchanges.kucoin.requests_per_min", 600)
	v.SetDefault("exchanges.kucoin.max_in_flight", 10)

	// Ranking defaults
	v.SetDefault("ranking.start_rank", 100)
	v.SetDefault("ranking.end_rank", 1500)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arb-scanner")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Arbitrage.InitialCapital <= 0 {
		return fmt.Errorf("arbitrage.initial_capital must be positive, got %v", c.Arbitrage.InitialCapital)
	}
	if c.Arbitrage.MaxSlippagePct < 0 {
		return fmt.Errorf("arbitrage.max_slippage_pct must not be negative, got %v", c.Arbitrage.MaxSlippagePct)
	}
	if c.Arbitrage.ScanInterval <= 0 {
		return fmt.Errorf("arbitrage.scan_interval must be positive, got %v", c.Arbitrage.ScanInterval)
	}
	if c.Arbitrage.RetryAfterCycles < 0 {
		return fmt.Errorf("arbitrage.retry_after_cycles must not be negative, got %d", c.Arbitrage.RetryAfterCycles)
	}
	enabled := 0
	for _, ex := range c.Exchanges {
		if ex.Enabled {
			enabled++
		}
	}
	if enabled < 2 {
		return fmt.Errorf("at least two exchanges must be enabled, got %d", enabled)
	}
	if c.Ranking.StartRank >= c.Ranking.EndRank {
		return fmt.Errorf("ranking.start_rank must be below ranking.end_rank")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram enabled but bot_token or chat_id is missing")
	}
	return nil
}

// TargetSymbolList splits possibly comma-joined symbol entries and trims them.
func (c *ArbitrageConfig) TargetSymbolList() []string {
	var out []string
	for _, entry := range c.TargetSymbols {
		for _, s := range strings.Split(entry, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
