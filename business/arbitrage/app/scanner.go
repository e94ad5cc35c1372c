package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-scanner/business/arbitrage/domain"
	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
	"github.com/fd1az/arb-scanner/internal/apm"
)

// ScannerConfig holds the profitability thresholds.
type ScannerConfig struct {
	Capital      decimal.Decimal // quote notional per estimate
	MinProfitPct decimal.Decimal // accept threshold, percent
	MaxSlippage  decimal.Decimal // per-leg ceiling, percent
}

// Scanner pairwise-compares cached books across venues and emits
// threshold-passing opportunities. It holds no per-cycle state; every
// scan reads whatever the cache holds after the refresh barrier.
type Scanner struct {
	cache      *MarketCache
	calculator *Calculator
	config     ScannerConfig
	tracer     apm.Tracer
}

// NewScanner creates a scanner.
func NewScanner(cache *MarketCache, calculator *Calculator, cfg ScannerConfig) *Scanner {
	return &Scanner{
		cache:      cache,
		calculator: calculator,
		config:     cfg,
		tracer:     apm.NewTracer("arbitrage_scanner"),
	}
}

// Scan evaluates every symbol against every unordered exchange pair in
// stable order (symbol list order x exchange list order). The forward
// direction (buy on A, sell on B) is checked first; only if it shows no
// raw spread is the reverse considered. Output order follows evaluation
// order; no ranking is applied.
func (s *Scanner) Scan(ctx context.Context, symbols []exchange.Symbol, exchanges []string) []domain.Opportunity {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "scanner.scan",
		trace.WithAttributes(
			attribute.Int("symbols", len(symbols)),
			attribute.Int("exchanges", len(exchanges)),
		),
	)
	defer span.End()

	var opportunities []domain.Opportunity

	for _, symbol := range symbols {
		view := s.cache.View(symbol)
		if !view.Comparable() {
			continue
		}

		for i := 0; i < len(exchanges); i++ {
			for j := i + 1; j < len(exchanges); j++ {
				a, b := exchanges[i], exchanges[j]

				if opp, ok := s.evaluatePair(symbol, a, b, view); ok {
					opportunities = append(opportunities, opp)
				} else if opp, ok := s.evaluatePair(symbol, b, a, view); ok {
					opportunities = append(opportunities, opp)
				}
			}
		}
	}

	span.SetAttributes(attribute.Int("opportunities", len(opportunities)))
	return opportunities
}

// evaluatePair checks the directed pairing buy-on-buyEx, sell-on-sellEx.
func (s *Scanner) evaluatePair(symbol exchange.Symbol, buyEx, sellEx string, view domain.PairView) (domain.Opportunity, bool) {
	buySnap, okBuy := view.Snapshots[buyEx]
	sellSnap, okSell := view.Snapshots[sellEx]
	if !okBuy || !okSell {
		return domain.Opportunity{}, false
	}

	bestAsk, okAsk := buySnap.Book.BestAsk()
	bestBid, okBid := sellSnap.Book.BestBid()
	if !okAsk || !okBid {
		return domain.Opportunity{}, false
	}

	// No raw spread means no opportunity regardless of fees.
	if !bestBid.Price.GreaterThan(bestAsk.Price) {
		return domain.Opportunity{}, false
	}

	estimate := s.calculator.CalculatePotentialProfit(symbol, buyEx, sellEx, s.config.Capital)

	if !estimate.MeetsThreshold(s.config.MinProfitPct) {
		return domain.Opportunity{}, false
	}

	slippageCeiling := s.config.MaxSlippage.Div(hundred)
	if estimate.BuySlippage.GreaterThan(slippageCeiling) || estimate.SellSlippage.GreaterThan(slippageCeiling) {
		return domain.Opportunity{}, false
	}

	buyPrice, sellPrice := s.calculator.AdjustedPrices(symbol, buyEx, sellEx, estimate)

	return domain.Opportunity{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Symbol:       symbol,
		BuyExchange:  buyEx,
		SellExchange: sellEx,
		BuyPrice:     buyPrice,
		SellPrice:    sellPrice,
		Capital:      s.config.Capital,
		Profit:       estimate,
	}, true
}
