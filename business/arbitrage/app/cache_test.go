package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
)

func TestMarketCache_Books(t *testing.T) {
	btc := exchange.NewSymbol("BTC", "USDT")
	now := time.Now().UTC()
	cache := NewMarketCache()

	if _, ok := cache.Book(btc, "binance"); ok {
		t.Fatal("expected miss on empty cache")
	}

	book := makeBook(btc, "binance", [][2]string{{"100", "1"}}, [][2]string{{"101", "1"}})
	cache.SetBook(btc, "binance", book, now)

	snap, ok := cache.Book(btc, "binance")
	if !ok {
		t.Fatal("expected hit after SetBook")
	}
	if !snap.FetchedAt.Equal(now) || snap.Exchange != "binance" {
		t.Errorf("snapshot = %+v", snap)
	}

	view := cache.View(btc)
	if len(view.Snapshots) != 1 || view.Comparable() {
		t.Errorf("one venue should not be comparable, got %d snapshots", len(view.Snapshots))
	}

	cache.SetBook(btc, "kucoin", makeBook(btc, "kucoin",
		[][2]string{{"100", "1"}}, [][2]string{{"101", "1"}}), now)
	if !cache.View(btc).Comparable() {
		t.Error("two venues should be comparable")
	}
	if cache.SymbolCount() != 1 {
		t.Errorf("SymbolCount = %d, want 1", cache.SymbolCount())
	}
}

func TestMarketCache_FailureTracking(t *testing.T) {
	btc := exchange.NewSymbol("BTC", "USDT")
	now := time.Now().UTC()

	t.Run("permanent_denylist", func(t *testing.T) {
		cache := NewMarketCache()
		cache.MarkFailed("binance", btc, 1, 10)

		// retryAfterCycles 0 keeps the pair out indefinitely.
		for _, cycle := range []int{2, 50, 1000} {
			if !cache.ShouldSkip("binance", btc, cycle, 0) {
				t.Errorf("cycle %d: expected permanent skip", cycle)
			}
		}
		if cache.ShouldSkip("kucoin", btc, 2, 0) {
			t.Error("other exchange must be unaffected")
		}
	})

	t.Run("retry_after_cycles", func(t *testing.T) {
		cache := NewMarketCache()
		cache.MarkFailed("binance", btc, 5, 10)

		if !cache.ShouldSkip("binance", btc, 6, 3) {
			t.Error("cycle 6: expected skip")
		}
		if !cache.ShouldSkip("binance", btc, 7, 3) {
			t.Error("cycle 7: expected skip")
		}
		if cache.ShouldSkip("binance", btc, 8, 3) {
			t.Error("cycle 8: expected retry eligibility")
		}
	})

	t.Run("success_clears_record", func(t *testing.T) {
		cache := NewMarketCache()
		cache.MarkFailed("binance", btc, 1, 10)
		cache.SetBook(btc, "binance", makeBook(btc, "binance",
			[][2]string{{"100", "1"}}, [][2]string{{"101", "1"}}), now)

		if cache.ShouldSkip("binance", btc, 2, 0) {
			t.Error("successful refresh must clear the denylist entry")
		}
		if n := cache.FailedPairs()["binance"]; n != 0 {
			t.Errorf("FailedPairs = %d, want 0", n)
		}
	})

	t.Run("log_budget", func(t *testing.T) {
		cache := NewMarketCache()
		budget := 3

		for i := 0; i < budget; i++ {
			symbol := exchange.NewSymbol("BTC", "USDT")
			if !cache.MarkFailed("binance", symbol, i, budget) {
				t.Errorf("failure %d: expected loggable within budget", i)
			}
		}
		if cache.MarkFailed("binance", btc, budget, budget) {
			t.Error("expected suppression past the budget")
		}
		if !cache.MarkFailed("kucoin", btc, 0, budget) {
			t.Error("budget is per exchange")
		}
	})
}

func TestMarketCache_Fees(t *testing.T) {
	btc := exchange.NewSymbol("BTC", "USDT")
	eth := exchange.NewSymbol("ETH", "USDT")
	now := time.Now().UTC()
	cache := NewMarketCache()

	if cache.FeesFresh("binance", now, time.Hour) {
		t.Error("empty cache must report stale fees")
	}

	fee := cache.Fee("binance", btc)
	if !fee.Maker.Equal(exchange.DefaultFeeRate) || !fee.Taker.Equal(exchange.DefaultFeeRate) {
		t.Errorf("expected default fees, got %+v", fee)
	}

	maker := decimal.RequireFromString("0.0002")
	taker := decimal.RequireFromString("0.0007")
	cache.SetFees("binance", map[string]exchange.TradingFee{
		btc.String(): {Symbol: btc, Maker: maker, Taker: taker},
	}, now)

	got := cache.Fee("binance", btc)
	if !got.Maker.Equal(maker) || !got.Taker.Equal(taker) {
		t.Errorf("Fee = %+v", got)
	}

	// Unreported pair on a known exchange still falls back.
	if !cache.Fee("binance", eth).Taker.Equal(exchange.DefaultFeeRate) {
		t.Error("expected default fee for unreported pair")
	}

	if !cache.FeesFresh("binance", now.Add(30*time.Minute), time.Hour) {
		t.Error("expected fresh within max age")
	}
	if cache.FeesFresh("binance", now.Add(2*time.Hour), time.Hour) {
		t.Error("expected stale past max age")
	}
}
