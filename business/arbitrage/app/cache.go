// Package app implements the arbitrage scanning pipeline: market data
// cache, profit calculator, opportunity scanner and the engine loop.
package app

import (
	"sync"
	"time"

	"github.com/fd1az/arb-scanner/business/arbitrage/domain"
	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
)

// feeEntry is one exchange's fee schedule with its fetch time, used to
// throttle fee refresh.
type feeEntry struct {
	fees      map[string]exchange.TradingFee
	fetchedAt time.Time
}

// failureRecord tracks when a (exchange, symbol) pair last failed and
// how many times it has failed, for retry eligibility and log limiting.
type failureRecord struct {
	cycle int
	count int
}

// MarketCache is the shared state between the refresh and scan phases:
// order book snapshots per (symbol, exchange), fee schedules per
// exchange, and the failed-pair bookkeeping. Writes happen from
// concurrent refresh tasks on independent keys; reads happen only after
// the refresh barrier.
type MarketCache struct {
	mu sync.RWMutex

	// symbol -> exchange -> snapshot
	books map[string]map[string]domain.MarketSnapshot

	// exchange -> fee schedule
	fees map[string]feeEntry

	// exchange -> symbol -> latest streamed quote
	tickers map[string]map[string]exchange.Ticker

	// exchange -> symbol -> failure record
	failed map[string]map[string]failureRecord

	// exchange -> total failures observed, for log rate limiting
	failureTally map[string]int
}

// NewMarketCache creates an empty cache.
func NewMarketCache() *MarketCache {
	return &MarketCache{
		books:        make(map[string]map[string]domain.MarketSnapshot),
		fees:         make(map[string]feeEntry),
		tickers:      make(map[string]map[string]exchange.Ticker),
		failed:       make(map[string]map[string]failureRecord),
		failureTally: make(map[string]int),
	}
}

// SetBook stores a fresh snapshot for (symbol, exchange) and clears any
// failure record for the pair.
func (c *MarketCache) SetBook(symbol exchange.Symbol, exchangeName string, book exchange.OrderBook, now time.Time) {
	key := symbol.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	byExchange, ok := c.books[key]
	if !ok {
		byExchange = make(map[string]domain.MarketSnapshot)
		c.books[key] = byExchange
	}
	byExchange[exchangeName] = domain.MarketSnapshot{
		Exchange:  exchangeName,
		Book:      book,
		FetchedAt: now,
	}

	if records, ok := c.failed[exchangeName]; ok {
		delete(records, key)
	}
}

// Book returns the cached snapshot for (symbol, exchange).
func (c *MarketCache) Book(symbol exchange.Symbol, exchangeName string) (domain.MarketSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byExchange, ok := c.books[symbol.String()]
	if !ok {
		return domain.MarketSnapshot{}, false
	}
	snap, ok := byExchange[exchangeName]
	return snap, ok
}

// View returns all snapshots for a symbol keyed by exchange.
func (c *MarketCache) View(symbol exchange.Symbol) domain.PairView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	view := domain.PairView{
		Symbol:    symbol,
		Snapshots: make(map[string]domain.MarketSnapshot),
	}
	for name, snap := range c.books[symbol.String()] {
		view.Snapshots[name] = snap
	}
	return view
}

// SetTicker stores the latest streamed quote for its (exchange, symbol).
func (c *MarketCache) SetTicker(t exchange.Ticker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bySymbol, ok := c.tickers[t.Exchange]
	if !ok {
		bySymbol = make(map[string]exchange.Ticker)
		c.tickers[t.Exchange] = bySymbol
	}
	bySymbol[t.Symbol.String()] = t
}

// LiveTicker returns the latest streamed quote for (exchange, symbol).
func (c *MarketCache) LiveTicker(exchangeName string, symbol exchange.Symbol) (exchange.Ticker, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bySymbol, ok := c.tickers[exchangeName]
	if !ok {
		return exchange.Ticker{}, false
	}
	t, ok := bySymbol[symbol.String()]
	return t, ok
}

// LiveQuotes returns the number of symbols with a streamed quote per
// exchange.
func (c *MarketCache) LiveQuotes() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.tickers))
	for name, bySymbol := range c.tickers {
		out[name] = len(bySymbol)
	}
	return out
}

// SetFees stores an exchange's fee schedule.
func (c *MarketCache) SetFees(exchangeName string, fees map[string]exchange.TradingFee, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fees[exchangeName] = feeEntry{fees: fees, fetchedAt: now}
}

// Fee returns the cached maker/taker rates for (exchange, symbol), or
// the default schedule when the exchange or pair is absent.
func (c *MarketCache) Fee(exchangeName string, symbol exchange.Symbol) exchange.TradingFee {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.fees[exchangeName]
	if !ok {
		return exchange.DefaultTradingFee(symbol)
	}
	fee, ok := entry.fees[symbol.String()]
	if !ok {
		return exchange.DefaultTradingFee(symbol)
	}
	return fee
}

// FeesFresh reports whether the exchange's fee schedule exists and is
// younger than maxAge.
func (c *MarketCache) FeesFresh(exchangeName string, now time.Time, maxAge time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.fees[exchangeName]
	if !ok {
		return false
	}
	return now.Sub(entry.fetchedAt) < maxAge
}

// MarkFailed records a refresh failure for (exchange, symbol) at the
// given cycle and returns true while the exchange is still under its
// logging budget.
func (c *MarketCache) MarkFailed(exchangeName string, symbol exchange.Symbol, cycle, logBudget int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, ok := c.failed[exchangeName]
	if !ok {
		records = make(map[string]failureRecord)
		c.failed[exchangeName] = records
	}

	rec := records[symbol.String()]
	rec.cycle = cycle
	rec.count++
	records[symbol.String()] = rec

	c.failureTally[exchangeName]++
	return c.failureTally[exchangeName] <= logBudget
}

// ShouldSkip reports whether (exchange, symbol) is currently denylisted.
// With retryAfterCycles == 0 a failed pair stays excluded for the
// process lifetime; otherwise it becomes eligible again once that many
// cycles have passed since the last failure.
func (c *MarketCache) ShouldSkip(exchangeName string, symbol exchange.Symbol, currentCycle, retryAfterCycles int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, ok := c.failed[exchangeName]
	if !ok {
		return false
	}
	rec, ok := records[symbol.String()]
	if !ok {
		return false
	}
	if retryAfterCycles <= 0 {
		return true
	}
	return currentCycle-rec.cycle < retryAfterCycles
}

// FailedPairs returns the number of currently denylisted pairs per
// exchange.
func (c *MarketCache) FailedPairs() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.failed))
	for name, records := range c.failed {
		out[name] = len(records)
	}
	return out
}

// SymbolCount returns the number of symbols with at least one snapshot.
func (c *MarketCache) SymbolCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}
