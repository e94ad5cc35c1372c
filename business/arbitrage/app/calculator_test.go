package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
)

// Helper to build a book from [price, quantity] string pairs.
func makeBook(symbol exchange.Symbol, exchangeName string, bids, asks [][2]string) exchange.OrderBook {
	toLevels := func(raw [][2]string) []exchange.PriceLevel {
		levels := make([]exchange.PriceLevel, 0, len(raw))
		for _, pair := range raw {
			levels = append(levels, exchange.PriceLevel{
				Price:    decimal.RequireFromString(pair[0]),
				Quantity: decimal.RequireFromString(pair[1]),
			})
		}
		return levels
	}
	return exchange.OrderBook{
		Symbol:    symbol,
		Exchange:  exchangeName,
		Bids:      toLevels(bids),
		Asks:      toLevels(asks),
		Timestamp: time.Now(),
	}
}

func TestCalculator_EstimateSlippage(t *testing.T) {
	symbol := exchange.NewSymbol("BTC", "USDT")

	tests := []struct {
		name       string
		bids       [][2]string
		asks       [][2]string
		amount     string
		side       exchange.Side
		maxSlip    string
		capEnabled bool
		want       string
	}{
		{
			name:   "buy_filled_at_best",
			asks:   [][2]string{{"100", "5"}},
			amount: "2",
			side:   exchange.SideBuy,
			want:   "0",
		},
		{
			name:   "buy_walks_two_levels",
			asks:   [][2]string{{"100", "1"}, {"101", "1"}},
			amount: "2",
			side:   exchange.SideBuy,
			want:   "0.005", // avg 100.5 vs best 100
		},
		{
			name:   "sell_walks_two_levels",
			bids:   [][2]string{{"100", "1"}, {"99", "1"}},
			amount: "2",
			side:   exchange.SideSell,
			want:   "0.005", // avg 99.5 vs best 100
		},
		{
			name:   "partial_fill_summarized",
			asks:   [][2]string{{"100", "1"}, {"102", "1"}},
			amount: "10",
			side:   exchange.SideBuy,
			want:   "0.01", // only 2 filled, avg 101
		},
		{
			name:   "zero_amount",
			asks:   [][2]string{{"100", "1"}},
			amount: "0",
			side:   exchange.SideBuy,
			want:   "0",
		},
		{
			name:   "empty_side",
			asks:   nil,
			amount: "1",
			side:   exchange.SideBuy,
			want:   "0",
		},
		{
			name:       "cap_clamps_estimate",
			asks:       [][2]string{{"100", "1"}, {"102", "1"}},
			amount:     "10",
			side:       exchange.SideBuy,
			maxSlip:    "0.005",
			capEnabled: true,
			want:       "0.005",
		},
		{
			name:       "cap_disabled_passes_through",
			asks:       [][2]string{{"100", "1"}, {"102", "1"}},
			amount:     "10",
			side:       exchange.SideBuy,
			maxSlip:    "0.005",
			capEnabled: false,
			want:       "0.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := CalculatorConfig{CapEnabled: tt.capEnabled}
			if tt.maxSlip != "" {
				cfg.MaxSlippage = decimal.RequireFromString(tt.maxSlip)
			}
			calc := NewCalculator(NewMarketCache(), cfg)

			book := makeBook(symbol, "binance", tt.bids, tt.asks)
			got := calc.EstimateSlippage(book, decimal.RequireFromString(tt.amount), tt.side)

			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("EstimateSlippage = %s, want %s", got, want)
			}
		})
	}
}

func TestCalculator_SlippageMonotonicInAmount(t *testing.T) {
	symbol := exchange.NewSymbol("BTC", "USDT")
	calc := NewCalculator(NewMarketCache(), CalculatorConfig{})

	book := makeBook(symbol, "binance",
		[][2]string{{"100", "1"}, {"99", "2"}, {"98", "4"}, {"95", "8"}},
		[][2]string{{"101", "1"}, {"102", "2"}, {"104", "4"}, {"110", "8"}})

	amounts := []string{"0.5", "1", "2", "4", "8", "15", "20"}
	for _, side := range []exchange.Side{exchange.SideBuy, exchange.SideSell} {
		prev := decimal.Zero
		for _, amount := range amounts {
			got := calc.EstimateSlippage(book, decimal.RequireFromString(amount), side)
			if got.LessThan(prev) {
				t.Errorf("side %s: slippage decreased from %s to %s at amount %s",
					side, prev, got, amount)
			}
			prev = got
		}
	}
}

func TestCalculator_CalculatePotentialProfit(t *testing.T) {
	symbol := exchange.NewSymbol("BTC", "USDT")
	now := time.Now().UTC()

	cache := NewMarketCache()
	cache.SetBook(symbol, "binance",
		makeBook(symbol, "binance",
			[][2]string{{"49900", "1"}},
			[][2]string{{"50000", "1"}}), now)
	cache.SetBook(symbol, "kucoin",
		makeBook(symbol, "kucoin",
			[][2]string{{"50500", "1"}},
			[][2]string{{"50700", "1"}}), now)

	fee := decimal.RequireFromString("0.0005")
	for _, name := range []string{"binance", "kucoin"} {
		cache.SetFees(name, map[string]exchange.TradingFee{
			symbol.String(): {Symbol: symbol, Maker: fee, Taker: fee},
		}, now)
	}

	calc := NewCalculator(cache, CalculatorConfig{})

	t.Run("profitable_direction", func(t *testing.T) {
		got := calc.CalculatePotentialProfit(symbol, "binance", "kucoin", decimal.NewFromInt(1000))

		// 999.5 / 50000 bought, sold at 50500 minus 0.05%.
		wantProfit := decimal.RequireFromString("8.9902525")
		wantPct := decimal.RequireFromString("0.89902525")
		wantCoins := decimal.RequireFromString("0.01999")

		if !got.NetProfit.Equal(wantProfit) {
			t.Errorf("NetProfit = %s, want %s", got.NetProfit, wantProfit)
		}
		if !got.ProfitPct.Equal(wantPct) {
			t.Errorf("ProfitPct = %s, want %s", got.ProfitPct, wantPct)
		}
		if !got.CoinsBought.Equal(wantCoins) {
			t.Errorf("CoinsBought = %s, want %s", got.CoinsBought, wantCoins)
		}
		if !got.BuySlippage.IsZero() || !got.SellSlippage.IsZero() {
			t.Errorf("expected zero slippage on single deep levels, got buy=%s sell=%s",
				got.BuySlippage, got.SellSlippage)
		}
		if !got.IsProfitable() {
			t.Error("expected profitable estimate")
		}
	})

	t.Run("losing_direction", func(t *testing.T) {
		got := calc.CalculatePotentialProfit(symbol, "kucoin", "binance", decimal.NewFromInt(1000))
		if got.NetProfit.Sign() >= 0 {
			t.Errorf("expected loss buying high and selling low, got %s", got.NetProfit)
		}
	})

	t.Run("missing_book", func(t *testing.T) {
		other := exchange.NewSymbol("ETH", "USDT")
		got := calc.CalculatePotentialProfit(other, "binance", "kucoin", decimal.NewFromInt(1000))
		if !got.NetProfit.IsZero() || !got.CoinsBought.IsZero() {
			t.Errorf("expected zero estimate for missing books, got %+v", got)
		}
	})

	t.Run("nonpositive_notional", func(t *testing.T) {
		got := calc.CalculatePotentialProfit(symbol, "binance", "kucoin", decimal.Zero)
		if !got.NetProfit.IsZero() {
			t.Errorf("expected zero estimate for zero notional, got %s", got.NetProfit)
		}
	})

	t.Run("default_fees_when_unreported", func(t *testing.T) {
		bare := NewMarketCache()
		bare.SetBook(symbol, "binance", makeBook(symbol, "binance",
			[][2]string{{"49900", "1"}}, [][2]string{{"50000", "1"}}), now)
		bare.SetBook(symbol, "kucoin", makeBook(symbol, "kucoin",
			[][2]string{{"50500", "1"}}, [][2]string{{"50700", "1"}}), now)

		got := NewCalculator(bare, CalculatorConfig{}).
			CalculatePotentialProfit(symbol, "binance", "kucoin", decimal.NewFromInt(1000))

		if !got.BuyFee.Equal(exchange.DefaultFeeRate) || !got.SellFee.Equal(exchange.DefaultFeeRate) {
			t.Errorf("expected default fees, got buy=%s sell=%s", got.BuyFee, got.SellFee)
		}
		wantProfit := decimal.RequireFromString("7.98101")
		if !got.NetProfit.Equal(wantProfit) {
			t.Errorf("NetProfit = %s, want %s", got.NetProfit, wantProfit)
		}
	})
}
