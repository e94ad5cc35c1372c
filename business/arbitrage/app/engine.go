package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/arb-scanner/business/arbitrage/domain"
	exchangeapp "github.com/fd1az/arb-scanner/business/exchange/app"
	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
	"github.com/fd1az/arb-scanner/internal/apm"
	"github.com/fd1az/arb-scanner/internal/logger"
)

const (
	tracerName = "arbitrage_engine"
	meterName  = "arbitrage_engine"
)

// fallbackSymbols seed scanning when discovery yields nothing or fails.
var fallbackSymbols = []exchange.Symbol{
	exchange.NewSymbol("BTC", "USDT"),
	exchange.NewSymbol("ETH", "USDT"),
}

// majorQuotes filters discovery candidates to liquid quote currencies.
var majorQuotes = map[string]bool{"USDT": true, "BTC": true, "ETH": true}

// EngineConfig holds scan loop parameters.
type EngineConfig struct {
	Capital           decimal.Decimal
	MinProfitPct      decimal.Decimal
	MaxSlippagePct    decimal.Decimal
	SlippageCap       bool
	TargetSymbols     []exchange.Symbol
	ScanInterval      time.Duration
	OrderBookDepth    int
	FeeMaxAge         time.Duration
	RetryAfterCycles  int
	MaxLoggedFailures int
	MaxConcurrent     int // refresh fan-out bound, 0 = unbounded
	StartRank         int
	EndRank           int
}

// engineMetrics holds OTEL metric instruments.
type engineMetrics struct {
	cycles        metric.Int64Counter
	opportunities metric.Int64Counter
	refreshErrors metric.Int64Counter
	cycleDuration metric.Float64Histogram
}

// EngineReport is a point-in-time snapshot of scan loop statistics.
type EngineReport struct {
	Cycles             int            `json:"cycles"`
	OpportunitiesFound int            `json:"opportunities_found"`
	TrackedSymbols     int            `json:"tracked_symbols"`
	CachedSymbols      int            `json:"cached_symbols"`
	FailedPairs        map[string]int `json:"failed_pairs"`
	LiveQuotes         map[string]int `json:"live_quotes"`
	LastCycleAt        time.Time      `json:"last_cycle_at"`
	LastCycleDuration  string         `json:"last_cycle_duration"`
}

// Engine owns the cache and drives the periodic discover/refresh/scan/
// emit loop until its context is cancelled.
type Engine struct {
	config     EngineConfig
	connectors map[string]exchangeapp.Connector
	order      []string // stable exchange evaluation order

	cache      *MarketCache
	calculator *Calculator
	scanner    *Scanner
	ranker     Ranker
	reporters  []Reporter
	streamers  map[string]exchangeapp.Streamer

	logger  logger.LoggerInterface
	tracer  apm.Tracer
	metrics *engineMetrics

	symbols []exchange.Symbol
	cycle   int

	statsMu            sync.Mutex
	cyclesCompleted    int
	opportunitiesFound int
	lastCycleAt        time.Time
	lastCycleDuration  time.Duration
}

// NewEngine wires the engine. Connectors are evaluated in the order
// given by names; ranker may be nil, in which case discovery intersects
// the venues' listings directly.
func NewEngine(cfg EngineConfig, names []string, connectors map[string]exchangeapp.Connector, ranker Ranker, reporters []Reporter, log logger.LoggerInterface) (*Engine, error) {
	cache := NewMarketCache()
	calculator := NewCalculator(cache, CalculatorConfig{
		MaxSlippage: cfg.MaxSlippagePct.Div(hundred),
		CapEnabled:  cfg.SlippageCap,
	})
	scanner := NewScanner(cache, calculator, ScannerConfig{
		Capital:      cfg.Capital,
		MinProfitPct: cfg.MinProfitPct,
		MaxSlippage:  cfg.MaxSlippagePct,
	})

	e := &Engine{
		config:     cfg,
		connectors: connectors,
		order:      names,
		cache:      cache,
		calculator: calculator,
		scanner:    scanner,
		ranker:     ranker,
		reporters:  reporters,
		logger:     log,
		tracer:     apm.NewTracer(tracerName),
	}

	if err := e.initMetrics(); err != nil {
		return nil, err
	}
	return e, nil
}

// AttachStreamer registers a live quote feed for an exchange. Streams
// start when Run has discovered the target symbols.
func (e *Engine) AttachStreamer(name string, s exchangeapp.Streamer) {
	if e.streamers == nil {
		e.streamers = make(map[string]exchangeapp.Streamer)
	}
	e.streamers[name] = s
}

func (e *Engine) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	e.metrics = &engineMetrics{}

	e.metrics.cycles, err = meter.Int64Counter(
		"arb_scan_cycles_total",
		metric.WithDescription("Completed scan cycles"),
	)
	if err != nil {
		return err
	}

	e.metrics.opportunities, err = meter.Int64Counter(
		"arb_opportunities_total",
		metric.WithDescription("Detected opportunities"),
	)
	if err != nil {
		return err
	}

	e.metrics.refreshErrors, err = meter.Int64Counter(
		"arb_refresh_errors_total",
		metric.WithDescription("Order book refresh failures"),
	)
	if err != nil {
		return err
	}

	e.metrics.cycleDuration, err = meter.Float64Histogram(
		"arb_cycle_duration_ms",
		metric.WithDescription("Scan cycle duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Run drives the scan loop until ctx is cancelled. Symbol discovery
// happens once up front; per-pair failures never stop the loop.
func (e *Engine) Run(ctx context.Context) error {
	e.symbols = e.discoverSymbols(ctx)
	e.logger.Info(ctx, "engine starting",
		"symbols", len(e.symbols),
		"exchanges", len(e.order),
		"interval", e.config.ScanInterval.String())

	for name, streamer := range e.streamers {
		go e.consumeStream(ctx, name, streamer)
	}

	for {
		start := time.Now()

		e.runCycle(ctx)

		if ctx.Err() != nil {
			e.logger.Info(ctx, "engine stopped")
			return nil
		}

		elapsed := time.Since(start)
		sleep := e.config.ScanInterval - elapsed
		if sleep < 0 {
			sleep = 0
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			e.logger.Info(ctx, "engine stopped")
			return nil
		}
	}
}

// runCycle performs one refresh/scan/emit iteration.
func (e *Engine) runCycle(ctx context.Context) {
	ctx, span := e.tracer.StartSpanFromContext(ctx, "engine.cycle")
	defer span.End()

	start := time.Now()
	e.cycle++

	e.refresh(ctx)

	// An interrupted cycle must not report from a half-refreshed cache.
	if ctx.Err() != nil {
		return
	}

	opportunities := e.scanner.Scan(ctx, e.symbols, e.order)
	for i := range opportunities {
		e.emit(ctx, opportunities[i])
	}

	elapsed := time.Since(start)

	e.metrics.cycles.Add(ctx, 1)
	e.metrics.cycleDuration.Record(ctx, float64(elapsed.Milliseconds()))
	if len(opportunities) > 0 {
		e.metrics.opportunities.Add(ctx, int64(len(opportunities)))
	}

	e.statsMu.Lock()
	e.cyclesCompleted++
	e.opportunitiesFound += len(opportunities)
	e.lastCycleAt = time.Now().UTC()
	e.lastCycleDuration = elapsed
	e.statsMu.Unlock()

	span.SetAttributes(
		attribute.Int("opportunities", len(opportunities)),
		attribute.Int64("elapsed_ms", elapsed.Milliseconds()),
	)

	e.logger.Debug(ctx, "cycle complete",
		"cycle", e.cycle,
		"opportunities", len(opportunities),
		"elapsed", elapsed.String())
}

// refresh fans out one task per (symbol, exchange) for order books plus
// one per exchange for throttled fee schedules, and joins them all
// before returning. Failures are absorbed per task.
func (e *Engine) refresh(ctx context.Context) {
	ctx, span := e.tracer.StartSpanFromContext(ctx, "engine.refresh")
	defer span.End()

	cycle := e.cycle

	var g errgroup.Group
	if e.config.MaxConcurrent > 0 {
		g.SetLimit(e.config.MaxConcurrent)
	}

	now := time.Now().UTC()

	for _, name := range e.order {
		if e.cache.FeesFresh(name, now, e.config.FeeMaxAge) {
			continue
		}
		conn := e.connectors[name]
		g.Go(func() error {
			e.refreshFees(ctx, name, conn)
			return nil
		})
	}

	for _, symbol := range e.symbols {
		for _, name := range e.order {
			if e.cache.ShouldSkip(name, symbol, cycle, e.config.RetryAfterCycles) {
				continue
			}
			conn := e.connectors[name]
			g.Go(func() error {
				e.refreshBook(ctx, name, conn, symbol, cycle)
				return nil
			})
		}
	}

	g.Wait()
}

// refreshFees fetches one exchange's fee schedule. A failure keeps the
// previous schedule (or the defaults) in place.
func (e *Engine) refreshFees(ctx context.Context, name string, conn exchangeapp.Connector) {
	fees, err := conn.GetTradingFees(ctx, e.symbols)
	if err != nil {
		e.logger.Warn(ctx, "fee refresh failed, keeping previous schedule",
			"exchange", name, "error", err)
		return
	}
	e.cache.SetFees(name, fees, time.Now().UTC())
}

// refreshBook fetches one (symbol, exchange) order book.
func (e *Engine) refreshBook(ctx context.Context, name string, conn exchangeapp.Connector, symbol exchange.Symbol, cycle int) {
	book, err := conn.GetOrderBook(ctx, symbol, e.config.OrderBookDepth)
	if err != nil {
		e.metrics.refreshErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("exchange", name)))
		if e.cache.MarkFailed(name, symbol, cycle, e.config.MaxLoggedFailures) {
			e.logger.Warn(ctx, "order book refresh failed",
				"exchange", name, "symbol", symbol.String(), "error", err)
		}
		return
	}
	e.cache.SetBook(symbol, name, book, time.Now().UTC())
}

// emit logs the opportunity and dispatches it to reporters without
// blocking the loop. Reporter panics and errors are contained here.
func (e *Engine) emit(ctx context.Context, opp domain.Opportunity) {
	e.logger.Info(ctx, "opportunity detected",
		"symbol", opp.Symbol.String(),
		"buy_exchange", opp.BuyExchange,
		"sell_exchange", opp.SellExchange,
		"buy_price", opp.BuyPrice.String(),
		"sell_price", opp.SellPrice.String(),
		"profit", opp.Profit.NetProfit.StringFixed(4),
		"profit_pct", opp.Profit.ProfitPct.StringFixed(4))

	for _, r := range e.reporters {
		reporter := r
		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					e.logger.Error(ctx, "reporter panicked", "panic", rec)
				}
			}()
			if err := reporter.Report(ctx, opp); err != nil {
				e.logger.Warn(ctx, "reporter failed", "error", err)
			}
		}()
	}
}

// consumeStream feeds live quotes into the cache between polls. A feed
// that cannot start degrades to polling only; the loop never depends on
// streamed data.
func (e *Engine) consumeStream(ctx context.Context, name string, s exchangeapp.Streamer) {
	ch, err := s.StreamTickers(ctx, e.symbols)
	if err != nil {
		e.logger.Warn(ctx, "ticker stream unavailable, polling only",
			"exchange", name, "error", err)
		return
	}
	e.logger.Info(ctx, "ticker stream started", "exchange", name, "symbols", len(e.symbols))

	for ticker := range ch {
		e.cache.SetTicker(ticker)
	}
	e.logger.Info(ctx, "ticker stream ended", "exchange", name)
}

// discoverSymbols builds the target pair list: configured symbols win;
// otherwise ranked coins (when a ranker is wired) or the intersection of
// venue listings, filtered to major quotes and non-leveraged bases. Any
// failure falls back to the default pair set.
func (e *Engine) discoverSymbols(ctx context.Context) []exchange.Symbol {
	if len(e.config.TargetSymbols) > 0 {
		return e.config.TargetSymbols
	}

	ctx, span := e.tracer.StartSpanFromContext(ctx, "engine.discover")
	defer span.End()

	// How many venues list each canonical pair.
	listings := make(map[string]int)
	symbolByKey := make(map[string]exchange.Symbol)

	for _, name := range e.order {
		info, err := e.connectors[name].GetExchangeInfo(ctx)
		if err != nil {
			e.logger.Warn(ctx, "discovery: exchange info failed", "exchange", name, "error", err)
			continue
		}
		seen := make(map[string]bool)
		for _, symbol := range info.TradableSymbols() {
			key := symbol.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			listings[key]++
			symbolByKey[key] = symbol
		}
	}

	var candidates []exchange.Symbol

	if e.ranker != nil {
		coins, err := e.ranker.GetRankedCoins(ctx, e.config.StartRank, e.config.EndRank)
		if err != nil {
			e.logger.Warn(ctx, "discovery: ranking failed, using fallback symbols", "error", err)
			return fallbackSymbols
		}
		for _, coin := range coins {
			symbol := exchange.NewSymbol(coin, "USDT")
			if symbol.IsLeveraged() {
				continue
			}
			if listings[symbol.String()] >= 2 {
				candidates = append(candidates, symbol)
			}
		}
	} else {
		for key, count := range listings {
			if count < 2 {
				continue
			}
			symbol := symbolByKey[key]
			if !majorQuotes[symbol.Quote] || symbol.IsLeveraged() {
				continue
			}
			candidates = append(candidates, symbol)
		}
	}

	if len(candidates) == 0 {
		e.logger.Warn(ctx, "discovery yielded nothing, using fallback symbols")
		return fallbackSymbols
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].String() < candidates[j].String()
	})

	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	return candidates
}

// Report returns a snapshot of loop statistics.
func (e *Engine) Report() EngineReport {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()

	return EngineReport{
		Cycles:             e.cyclesCompleted,
		OpportunitiesFound: e.opportunitiesFound,
		TrackedSymbols:     len(e.symbols),
		CachedSymbols:      e.cache.SymbolCount(),
		FailedPairs:        e.cache.FailedPairs(),
		LiveQuotes:         e.cache.LiveQuotes(),
		LastCycleAt:        e.lastCycleAt,
		LastCycleDuration:  e.lastCycleDuration.String(),
	}
}

// Healthy reports whether a cycle completed recently. Used by the
// readiness probe; the loop is considered stuck after three missed
// intervals.
func (e *Engine) Healthy(now time.Time) bool {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()

	if e.cyclesCompleted == 0 {
		return true // still warming up
	}
	return now.Sub(e.lastCycleAt) < 3*e.config.ScanInterval
}
