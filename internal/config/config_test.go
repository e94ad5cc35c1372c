package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "arb-scanner" {
		t.Errorf("app.name = %s", cfg.App.Name)
	}
	if !cfg.Arbitrage.InitialCapitalDecimal().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("initial_capital = %v", cfg.Arbitrage.InitialCapital)
	}
	if cfg.Arbitrage.ScanInterval != 10*time.Second {
		t.Errorf("scan_interval = %v", cfg.Arbitrage.ScanInterval)
	}
	if cfg.Arbitrage.FeeRefreshMaxAge != time.Hour {
		t.Errorf("fee_refresh_max_age = %v", cfg.Arbitrage.FeeRefreshMaxAge)
	}
	if cfg.Arbitrage.RetryAfterCycles != 0 {
		t.Errorf("retry_after_cycles = %d", cfg.Arbitrage.RetryAfterCycles)
	}
	if !cfg.Arbitrage.SlippageCap {
		t.Error("slippage_cap should default on")
	}
	if !cfg.Exchanges["binance"].Enabled || !cfg.Exchanges["kucoin"].Enabled {
		t.Error("both default exchanges should be enabled")
	}
	if cfg.Exchanges["binance"].RequestsPerMin != 1200 {
		t.Errorf("binance requests_per_min = %d", cfg.Exchanges["binance"].RequestsPerMin)
	}
	if cfg.Telegram.Enabled || cfg.Telemetry.Enabled {
		t.Error("telegram and telemetry should default off")
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
arbitrage:
  initial_capital: 5000
  min_profit_pct: 1.5
  target_symbols: ["BTC/USDT", "ETH/USDT"]
  scan_interval: 30s
  retry_after_cycles: 5
exchanges:
  binance:
    enabled: true
  kucoin:
    enabled: true
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.Arbitrage.InitialCapitalDecimal().Equal(decimal.NewFromInt(5000)) {
		t.Errorf("initial_capital = %v", cfg.Arbitrage.InitialCapital)
	}
	if cfg.Arbitrage.ScanInterval != 30*time.Second {
		t.Errorf("scan_interval = %v", cfg.Arbitrage.ScanInterval)
	}
	if cfg.Arbitrage.RetryAfterCycles != 5 {
		t.Errorf("retry_after_cycles = %d", cfg.Arbitrage.RetryAfterCycles)
	}
	got := cfg.Arbitrage.TargetSymbolList()
	if len(got) != 2 || got[0] != "BTC/USDT" || got[1] != "ETH/USDT" {
		t.Errorf("target symbols = %v", got)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Arbitrage: ArbitrageConfig{
				InitialCapital: 1000,
				ScanInterval:   10 * time.Second,
			},
			Exchanges: map[string]ExchangeConfig{
				"binance": {Enabled: true},
				"kucoin":  {Enabled: true},
			},
			Ranking: RankingConfig{StartRank: 100, EndRank: 1500},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}

	t.Run("single_exchange", func(t *testing.T) {
		cfg := base()
		cfg.Exchanges = map[string]ExchangeConfig{"binance": {Enabled: true}}
		if cfg.Validate() == nil {
			t.Error("expected error with one exchange")
		}
	})

	t.Run("nonpositive_capital", func(t *testing.T) {
		cfg := base()
		cfg.Arbitrage.InitialCapital = 0
		if cfg.Validate() == nil {
			t.Error("expected error for zero capital")
		}
	})

	t.Run("inverted_rank_range", func(t *testing.T) {
		cfg := base()
		cfg.Ranking.StartRank = 2000
		if cfg.Validate() == nil {
			t.Error("expected error for inverted rank range")
		}
	})

	t.Run("telegram_missing_credentials", func(t *testing.T) {
		cfg := base()
		cfg.Telegram.Enabled = true
		if cfg.Validate() == nil {
			t.Error("expected error for enabled telegram without credentials")
		}
	})

	t.Run("negative_retry_cycles", func(t *testing.T) {
		cfg := base()
		cfg.Arbitrage.RetryAfterCycles = -1
		if cfg.Validate() == nil {
			t.Error("expected error for negative retry cycles")
		}
	})
}

func TestTargetSymbolList_SplitsCommaEntries(t *testing.T) {
	cfg := ArbitrageConfig{TargetSymbols: []string{"BTC/USDT, ETH/USDT", "", "XRP/USDT"}}
	got := cfg.TargetSymbolList()
	want := []string{"BTC/USDT", "ETH/USDT", "XRP/USDT"}
	if len(got) != len(want) {
		t.Fatalf("list = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("list[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
