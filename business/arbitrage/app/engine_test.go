package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-scanner/business/arbitrage/domain"
	exchangeapp "github.com/fd1az/arb-scanner/business/exchange/app"
	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
	"github.com/fd1az/arb-scanner/internal/logger"
)

// stubConnector implements the connector port with overridable hooks.
type stubConnector struct {
	name      string
	info      exchange.ExchangeInfo
	books     map[string]exchange.OrderBook
	bookErr   map[string]error
	mu        sync.Mutex
	bookCalls int
	feeCalls  int
}

func (s *stubConnector) Name() string                     { return s.name }
func (s *stubConnector) Initialize(context.Context) error { return nil }
func (s *stubConnector) Close() error                     { return nil }

func (s *stubConnector) GetExchangeInfo(context.Context) (exchange.ExchangeInfo, error) {
	return s.info, nil
}

func (s *stubConnector) GetTicker(context.Context, exchange.Symbol) (exchange.Ticker, error) {
	return exchange.Ticker{}, errors.New("not implemented")
}

func (s *stubConnector) GetOrderBook(_ context.Context, symbol exchange.Symbol, _ int) (exchange.OrderBook, error) {
	s.mu.Lock()
	s.bookCalls++
	s.mu.Unlock()

	if err, ok := s.bookErr[symbol.String()]; ok {
		return exchange.OrderBook{}, err
	}
	book, ok := s.books[symbol.String()]
	if !ok {
		return exchange.OrderBook{}, errors.New("no book")
	}
	return book, nil
}

func (s *stubConnector) GetTradingFees(_ context.Context, symbols []exchange.Symbol) (map[string]exchange.TradingFee, error) {
	s.mu.Lock()
	s.feeCalls++
	s.mu.Unlock()

	fees := make(map[string]exchange.TradingFee, len(symbols))
	for _, symbol := range symbols {
		fees[symbol.String()] = exchange.DefaultTradingFee(symbol)
	}
	return fees, nil
}

func (s *stubConnector) GetBalance(context.Context, string) (exchange.Balance, error) {
	return exchange.Balance{}, errors.New("not implemented")
}

func (s *stubConnector) PlaceOrder(context.Context, exchange.OrderRequest) (exchange.Order, error) {
	return exchange.Order{}, errors.New("not implemented")
}

func (s *stubConnector) CancelOrder(context.Context, exchange.Symbol, string) error {
	return errors.New("not implemented")
}

func (s *stubConnector) GetOrder(context.Context, exchange.Symbol, string) (exchange.Order, error) {
	return exchange.Order{}, errors.New("not implemented")
}

func (s *stubConnector) Transfer(context.Context, exchange.TransferRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubConnector) Withdraw(context.Context, exchange.WithdrawalRequest) (string, error) {
	return "", errors.New("not implemented")
}

// captureReporter records reported opportunities.
type captureReporter struct {
	mu   sync.Mutex
	opps []domain.Opportunity
	done chan struct{}
}

func (r *captureReporter) Report(_ context.Context, opp domain.Opportunity) error {
	r.mu.Lock()
	r.opps = append(r.opps, opp)
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
	return nil
}

// stubRanker returns fixed coins or an error.
type stubRanker struct {
	coins []string
	err   error
}

func (r *stubRanker) GetRankedCoins(context.Context, int, int) ([]string, error) {
	return r.coins, r.err
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func listing(names ...string) exchange.ExchangeInfo {
	var info exchange.ExchangeInfo
	for _, n := range names {
		symbol, _ := exchange.ParseSymbol(n)
		info.Symbols = append(info.Symbols, exchange.SymbolInfo{
			Symbol: symbol,
			Status: exchange.SymbolStatusTrading,
		})
	}
	return info
}

func testEngineConfig(symbols ...exchange.Symbol) EngineConfig {
	return EngineConfig{
		Capital:           decimal.NewFromInt(1000),
		MinProfitPct:      decimal.RequireFromString("0.05"),
		MaxSlippagePct:    decimal.RequireFromString("0.5"),
		TargetSymbols:     symbols,
		ScanInterval:      time.Hour, // tests drive cycles directly
		OrderBookDepth:    20,
		FeeMaxAge:         time.Hour,
		RetryAfterCycles:  0,
		MaxLoggedFailures: 10,
	}
}

func TestEngine_CycleDetectsOpportunity(t *testing.T) {
	btc := exchange.NewSymbol("BTC", "USDT")

	a := &stubConnector{
		name: "binance",
		books: map[string]exchange.OrderBook{
			btc.String(): makeBook(btc, "binance",
				[][2]string{{"49900", "5"}}, [][2]string{{"50000", "5"}}),
		},
	}
	b := &stubConnector{
		name: "kucoin",
		books: map[string]exchange.OrderBook{
			btc.String(): makeBook(btc, "kucoin",
				[][2]string{{"50500", "5"}}, [][2]string{{"50700", "5"}}),
		},
	}

	reporter := &captureReporter{done: make(chan struct{}, 1)}

	engine, err := NewEngine(testEngineConfig(btc),
		[]string{"binance", "kucoin"},
		map[string]exchangeapp.Connector{"binance": a, "kucoin": b},
		nil, []Reporter{reporter}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	engine.symbols = engine.config.TargetSymbols
	engine.runCycle(context.Background())

	select {
	case <-reporter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reporter was not invoked")
	}

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	if len(reporter.opps) != 1 {
		t.Fatalf("expected 1 reported opportunity, got %d", len(reporter.opps))
	}
	if reporter.opps[0].BuyExchange != "binance" || reporter.opps[0].SellExchange != "kucoin" {
		t.Errorf("direction = buy %s sell %s",
			reporter.opps[0].BuyExchange, reporter.opps[0].SellExchange)
	}

	report := engine.Report()
	if report.Cycles != 1 || report.OpportunitiesFound != 1 {
		t.Errorf("report = %+v", report)
	}

	// Both venues fetched fees once; the schedule is fresh next cycle.
	if a.feeCalls != 1 || b.feeCalls != 1 {
		t.Errorf("fee calls = %d, %d; want 1, 1", a.feeCalls, b.feeCalls)
	}
	engine.runCycle(context.Background())
	if a.feeCalls != 1 || b.feeCalls != 1 {
		t.Errorf("fee refresh not throttled: %d, %d calls", a.feeCalls, b.feeCalls)
	}
}

func TestEngine_FailureIsolation(t *testing.T) {
	btc := exchange.NewSymbol("BTC", "USDT")
	eth := exchange.NewSymbol("ETH", "USDT")

	ethBookA := makeBook(eth, "binance", [][2]string{{"2990", "50"}}, [][2]string{{"3000", "50"}})
	ethBookB := makeBook(eth, "kucoin", [][2]string{{"3040", "50"}}, [][2]string{{"3050", "50"}})

	a := &stubConnector{
		name:    "binance",
		books:   map[string]exchange.OrderBook{eth.String(): ethBookA},
		bookErr: map[string]error{btc.String(): errors.New("venue timeout")},
	}
	b := &stubConnector{
		name: "kucoin",
		books: map[string]exchange.OrderBook{
			btc.String(): makeBook(btc, "kucoin", [][2]string{{"50500", "5"}}, [][2]string{{"50700", "5"}}),
			eth.String(): ethBookB,
		},
	}

	reporter := &captureReporter{done: make(chan struct{}, 1)}

	engine, err := NewEngine(testEngineConfig(btc, eth),
		[]string{"binance", "kucoin"},
		map[string]exchangeapp.Connector{"binance": a, "kucoin": b},
		nil, []Reporter{reporter}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	engine.symbols = engine.config.TargetSymbols
	engine.runCycle(context.Background())

	// ETH still scans despite the BTC failure on binance.
	select {
	case <-reporter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy pair was not scanned")
	}

	if n := engine.Report().FailedPairs["binance"]; n != 1 {
		t.Errorf("FailedPairs[binance] = %d, want 1", n)
	}

	// Permanent denylist: the failed pair is not retried next cycle.
	calls := a.bookCalls
	engine.runCycle(context.Background())
	if a.bookCalls != calls+1 { // only ETH
		t.Errorf("expected 1 more book call, got %d", a.bookCalls-calls)
	}
}

// stubStreamer hands out a fixed ticker channel.
type stubStreamer struct {
	ch  chan exchange.Ticker
	err error
}

func (s *stubStreamer) StreamTickers(context.Context, []exchange.Symbol) (<-chan exchange.Ticker, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ch, nil
}

func TestEngine_StreamFeedsLiveQuotes(t *testing.T) {
	btc := exchange.NewSymbol("BTC", "USDT")

	book := makeBook(btc, "binance", [][2]string{{"49900", "5"}}, [][2]string{{"50000", "5"}})
	a := &stubConnector{name: "binance", books: map[string]exchange.OrderBook{btc.String(): book}}
	b := &stubConnector{name: "kucoin", books: map[string]exchange.OrderBook{btc.String(): book}}

	engine, err := NewEngine(testEngineConfig(btc),
		[]string{"binance", "kucoin"},
		map[string]exchangeapp.Connector{"binance": a, "kucoin": b},
		nil, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	feed := make(chan exchange.Ticker, 1)
	engine.AttachStreamer("binance", &stubStreamer{ch: feed})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()

	feed <- exchange.Ticker{
		Symbol:   btc,
		Exchange: "binance",
		Bid:      decimal.NewFromInt(50000),
		Ask:      decimal.NewFromInt(50001),
	}

	deadline := time.Now().Add(2 * time.Second)
	for engine.Report().LiveQuotes["binance"] != 1 {
		if time.Now().After(deadline) {
			t.Fatal("live quote never reached the cache")
		}
		time.Sleep(10 * time.Millisecond)
	}

	tick, ok := engine.cache.LiveTicker("binance", btc)
	if !ok || !tick.Bid.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("cached quote = %s, %v", tick.Bid, ok)
	}

	cancel()
	close(feed)
	<-done
}

func TestEngine_DiscoverSymbols(t *testing.T) {
	listingA := listing("BTC/USDT", "ETH/USDT", "BTC3L/USDT", "XRP/USDT", "ADA/EUR")
	listingB := listing("BTC/USDT", "ETH/USDT", "BTC3L/USDT", "ADA/EUR")

	newEngine := func(ranker Ranker) *Engine {
		a := &stubConnector{name: "binance", info: listingA}
		b := &stubConnector{name: "kucoin", info: listingB}
		cfg := testEngineConfig()
		cfg.StartRank = 1
		cfg.EndRank = 100
		engine, err := NewEngine(cfg,
			[]string{"binance", "kucoin"},
			map[string]exchangeapp.Connector{"binance": a, "kucoin": b},
			ranker, nil, testLogger())
		if err != nil {
			t.Fatal(err)
		}
		return engine
	}

	t.Run("intersection_without_ranker", func(t *testing.T) {
		got := newEngine(nil).discoverSymbols(context.Background())

		// XRP is single venue, BTC3L leveraged, ADA/EUR wrong quote.
		want := []string{"BTC/USDT", "ETH/USDT"}
		if len(got) != len(want) {
			t.Fatalf("discovered %v, want %v", got, want)
		}
		for i, symbol := range got {
			if symbol.String() != want[i] {
				t.Errorf("symbol[%d] = %s, want %s", i, symbol, want[i])
			}
		}
	})

	t.Run("ranker_filters_to_listed", func(t *testing.T) {
		got := newEngine(&stubRanker{coins: []string{"BTC", "XRP", "DOGE"}}).
			discoverSymbols(context.Background())

		if len(got) != 1 || got[0].String() != "BTC/USDT" {
			t.Fatalf("discovered %v, want [BTC/USDT]", got)
		}
	})

	t.Run("ranker_failure_falls_back", func(t *testing.T) {
		got := newEngine(&stubRanker{err: errors.New("api down")}).
			discoverSymbols(context.Background())

		if len(got) != 2 || got[0].String() != "BTC/USDT" || got[1].String() != "ETH/USDT" {
			t.Fatalf("discovered %v, want fallback pairs", got)
		}
	})

	t.Run("configured_symbols_win", func(t *testing.T) {
		engine := newEngine(&stubRanker{coins: []string{"BTC"}})
		doge := exchange.NewSymbol("DOGE", "USDT")
		engine.config.TargetSymbols = []exchange.Symbol{doge}

		got := engine.discoverSymbols(context.Background())
		if len(got) != 1 || got[0] != doge {
			t.Fatalf("discovered %v, want [DOGE/USDT]", got)
		}
	})
}
