// Package binance implements the exchange connector for Binance spot.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-scanner/business/exchange/domain"
	"github.com/fd1az/arb-scanner/internal/apm"
	"github.com/fd1az/arb-scanner/internal/apperror"
	"github.com/fd1az/arb-scanner/internal/httpclient"
	"github.com/fd1az/arb-scanner/internal/logger"
	"github.com/fd1az/arb-scanner/internal/ratelimit"
)

const (
	Name = "binance"

	tracerName = "binance"

	// REST API endpoints. Public market data is served from the
	// data-only host to keep weight off the account endpoints.
	BaseAPIURL  = "https://api.binance.com"
	DataAPIURL  = "https://data-api.binance.vision"
	BaseWSURL   = "wss://stream.binance.com:9443"
	DataWSURL   = "wss://data-stream.binance.vision"

	exchangeInfoEndpoint = "/api/v3/exchangeInfo"
	depthEndpoint        = "/api/v3/depth"
	bookTickerEndpoint   = "/api/v3/ticker/bookTicker"
	accountEndpoint      = "/api/v3/account"
	orderEndpoint        = "/api/v3/order"
	tradeFeeEndpoint     = "/sapi/v1/asset/tradeFee"
	transferEndpoint     = "/sapi/v1/asset/transfer"
	withdrawEndpoint     = "/sapi/v1/capital/withdraw/apply"

	httpTimeout = 10 * time.Second
	recvWindow  = "5000"
)

// Config holds connector configuration.
type Config struct {
	BaseURL        string // account API base URL (empty = default)
	DataURL        string // public market data base URL (empty = default)
	WSURL          string // stream base URL (empty = default)
	APIKey         string
	APISecret      string
	RequestsPerMin int
	MaxInFlight    int
	Timeout        time.Duration
}

// Connector is the Binance spot adapter. Venue symbols are concatenated
// uppercase ("BTCUSDT"); the mapping to canonical symbols is built from
// exchangeInfo during Initialize. Public market data goes through a
// separate client against the data-only host.
type Connector struct {
	config     Config
	client     httpclient.Client
	dataClient httpclient.Client
	logger     logger.LoggerInterface
	tracer     apm.Tracer

	// venue symbol -> canonical, built during Initialize
	symbolMap map[string]domain.Symbol
	mapMu     sync.RWMutex

	stream *streamFeed
}

// New creates a Binance connector.
func New(cfg Config, log logger.LoggerInterface) (*Connector, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}

	dataURL := cfg.DataURL
	if dataURL == "" {
		dataURL = DataAPIURL
	}

	gate := ratelimit.NewGate(orDefault(cfg.RequestsPerMin, 1200), orDefault(cfg.MaxInFlight, 10))

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(Name),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithGate(gate),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	dataClient, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(Name),
		httpclient.WithBaseURL(dataURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithGate(gate),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create data HTTP client: %w", err)
	}

	return &Connector{
		config:     cfg,
		client:     client,
		dataClient: dataClient,
		logger:     log,
		tracer:     apm.NewTracer(tracerName),
		symbolMap:  make(map[string]domain.Symbol),
	}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Name returns the venue identifier.
func (c *Connector) Name() string {
	return Name
}

// Initialize loads the symbol table from exchangeInfo.
func (c *Connector) Initialize(ctx context.Context) error {
	_, err := c.GetExchangeInfo(ctx)
	return err
}

// GetExchangeInfo fetches listed pairs and refreshes the symbol table.
func (c *Connector) GetExchangeInfo(ctx context.Context) (domain.ExchangeInfo, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.exchange_info")
	defer span.End()

	var result exchangeInfoResponse
	resp, err := c.dataClient.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "exchangeInfo")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetResult(&result).
		Get(ctx, exchangeInfoEndpoint)
	if err != nil {
		span.RecordError(err)
		return domain.ExchangeInfo{}, apperror.New(apperror.CodeExchangeInfoFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}
	if resp.IsError() {
		return domain.ExchangeInfo{}, apperror.New(apperror.CodeExchangeInfoFailed,
			apperror.WithContext(map[string]any{"exchange": Name, "status": resp.StatusCode}))
	}

	info := domain.ExchangeInfo{
		Exchange:   Name,
		ServerTime: time.UnixMilli(result.ServerTime).UTC(),
		Symbols:    make([]domain.SymbolInfo, 0, len(result.Symbols)),
	}

	c.mapMu.Lock()
	for _, s := range result.Symbols {
		canonical := domain.NewSymbol(s.BaseAsset, s.QuoteAsset)
		c.symbolMap[s.Symbol] = canonical

		status := domain.SymbolStatusHalted
		if s.Status == "TRADING" {
			status = domain.SymbolStatusTrading
		}
		entry := domain.SymbolInfo{
			Symbol:         canonical,
			Status:         status,
			PricePrecision: s.QuoteAssetPrecision,
			QtyPrecision:   s.BaseAssetPrecision,
		}
		for _, f := range s.Filters {
			switch f.FilterType {
			case "PRICE_FILTER":
				if v, err := decimal.NewFromString(f.MinPrice); err == nil {
					entry.MinPrice = v
				}
			case "LOT_SIZE":
				if v, err := decimal.NewFromString(f.MinQty); err == nil {
					entry.MinQty = v
				}
			}
		}
		info.Symbols = append(info.Symbols, entry)
	}
	c.mapMu.Unlock()

	span.SetAttributes(attribute.Int("symbols", len(info.Symbols)))
	return info, nil
}

// venueSymbol converts a canonical symbol to Binance notation.
func (c *Connector) venueSymbol(symbol domain.Symbol) string {
	return symbol.Base + symbol.Quote
}

// canonicalSymbol resolves a venue symbol via the table loaded from
// exchangeInfo, falling back to a parse against known quote assets.
func (c *Connector) canonicalSymbol(venue string) (domain.Symbol, bool) {
	c.mapMu.RLock()
	sym, ok := c.symbolMap[venue]
	c.mapMu.RUnlock()
	if ok {
		return sym, true
	}
	for _, quote := range []string{"USDT", "USDC", "BTC", "ETH", "BNB"} {
		if strings.HasSuffix(venue, quote) && len(venue) > len(quote) {
			return domain.NewSymbol(strings.TrimSuffix(venue, quote), quote), true
		}
	}
	return domain.Symbol{}, false
}

// GetTicker fetches the top-of-book quote for a pair.
func (c *Connector) GetTicker(ctx context.Context, symbol domain.Symbol) (domain.Ticker, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.ticker",
		trace.WithAttributes(attribute.String("symbol", symbol.String())),
	)
	defer span.End()

	var result bookTickerResponse
	resp, err := c.dataClient.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "bookTicker")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetQueryParam("symbol", c.venueSymbol(symbol)).
		SetResult(&result).
		Get(ctx, bookTickerEndpoint)
	if err != nil {
		span.RecordError(err)
		return domain.Ticker{}, apperror.New(apperror.CodeTickerFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "symbol": symbol.String()}))
	}
	if resp.IsError() {
		return domain.Ticker{}, apperror.New(apperror.CodeTickerFetchFailed,
			apperror.WithContext(map[string]any{"exchange": Name, "symbol": symbol.String(), "status": resp.StatusCode}))
	}

	bid, err := decimal.NewFromString(result.BidPrice)
	if err != nil {
		return domain.Ticker{}, apperror.New(apperror.CodeInvalidFormat, apperror.WithCause(err))
	}
	ask, err := decimal.NewFromString(result.AskPrice)
	if err != nil {
		return domain.Ticker{}, apperror.New(apperror.CodeInvalidFormat, apperror.WithCause(err))
	}

	return domain.Ticker{
		Symbol:    symbol,
		Exchange:  Name,
		Bid:       bid,
		Ask:       ask,
		Timestamp: time.Now().UTC(),
	}, nil
}

// GetOrderBook fetches a depth snapshot.
func (c *Connector) GetOrderBook(ctx context.Context, symbol domain.Symbol, depth int) (domain.OrderBook, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.depth",
		trace.WithAttributes(
			attribute.String("symbol", symbol.String()),
			attribute.Int("limit", depth),
		),
	)
	defer span.End()

	// Binance accepts: 5, 10, 20, 50, 100, 500, 1000, 5000
	validLimits := map[int]bool{5: true, 10: true, 20: true, 50: true, 100: true, 500: true, 1000: true, 5000: true}
	if !validLimits[depth] {
		depth = 20
	}

	var result depthResponse
	resp, err := c.dataClient.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "depth"),
			httpclient.NewLabel("symbol", symbol.String()),
		),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetQueryParam("symbol", c.venueSymbol(symbol)).
		SetQueryParam("limit", strconv.Itoa(depth)).
		SetResult(&result).
		Get(ctx, depthEndpoint)
	if err != nil {
		span.RecordError(err)
		return domain.OrderBook{}, apperror.New(apperror.CodeOrderbookFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "symbol": symbol.String()}))
	}
	if resp.IsError() {
		return domain.OrderBook{}, apperror.New(apperror.CodeOrderbookFetchFailed,
			apperror.WithContext(map[string]any{"exchange": Name, "symbol": symbol.String(), "status": resp.StatusCode}))
	}

	book, err := normalizeOrderBook(symbol, result.Bids, result.Asks)
	if err != nil {
		span.RecordError(err)
		return domain.OrderBook{}, err
	}

	span.SetAttributes(
		attribute.Int("bids", len(book.Bids)),
		attribute.Int("asks", len(book.Asks)),
	)
	return book, nil
}

// GetTradingFees fetches per-pair maker/taker rates. Without credentials
// the default schedule is returned for every pair.
func (c *Connector) GetTradingFees(ctx context.Context, symbols []domain.Symbol) (map[string]domain.TradingFee, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.trade_fees")
	defer span.End()

	fees := make(map[string]domain.TradingFee, len(symbols))

	if c.config.APIKey == "" || c.config.APISecret == "" {
		for _, s := range symbols {
			fees[s.String()] = domain.DefaultTradingFee(s)
		}
		return fees, nil
	}

	var result []tradeFeeEntry
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "tradeFee")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeader("X-MBX-APIKEY", c.config.APIKey).
		SetRawQuery(c.sign(url.Values{})).
		SetResult(&result).
		Get(ctx, tradeFeeEndpoint)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeFeeFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeFeeFetchFailed,
			apperror.WithContext(map[string]any{"exchange": Name, "status": resp.StatusCode}))
	}

	byVenue := make(map[string]tradeFeeEntry, len(result))
	for _, entry := range result {
		byVenue[entry.Symbol] = entry
	}

	for _, s := range symbols {
		entry, ok := byVenue[c.venueSymbol(s)]
		if !ok {
			fees[s.String()] = domain.DefaultTradingFee(s)
			continue
		}
		maker, errM := decimal.NewFromString(entry.MakerCommission)
		taker, errT := decimal.NewFromString(entry.TakerCommission)
		if errM != nil || errT != nil {
			fees[s.String()] = domain.DefaultTradingFee(s)
			continue
		}
		fees[s.String()] = domain.TradingFee{Symbol: s, Maker: maker, Taker: taker}
	}

	return fees, nil
}

// GetBalance fetches the account balance for one asset.
func (c *Connector) GetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.balance",
		trace.WithAttributes(attribute.String("asset", asset)),
	)
	defer span.End()

	if c.config.APIKey == "" || c.config.APISecret == "" {
		return domain.Balance{}, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	var result accountResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "account")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeader("X-MBX-APIKEY", c.config.APIKey).
		SetRawQuery(c.sign(url.Values{})).
		SetResult(&result).
		Get(ctx, accountEndpoint)
	if err != nil {
		span.RecordError(err)
		return domain.Balance{}, apperror.New(apperror.CodeConnectorRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}
	if resp.IsError() {
		return domain.Balance{}, apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithContext(map[string]any{"exchange": Name, "status": resp.StatusCode}))
	}

	asset = strings.ToUpper(asset)
	for _, b := range result.Balances {
		if b.Asset != asset {
			continue
		}
		free, errF := decimal.NewFromString(b.Free)
		locked, errL := decimal.NewFromString(b.Locked)
		if errF != nil || errL != nil {
			return domain.Balance{}, apperror.New(apperror.CodeInvalidFormat)
		}
		return domain.Balance{Asset: asset, Free: free, Locked: locked}, nil
	}
	return domain.Balance{Asset: asset, Free: decimal.Zero, Locked: decimal.Zero}, nil
}

// PlaceOrder submits an order.
func (c *Connector) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.place_order",
		trace.WithAttributes(
			attribute.String("symbol", req.Symbol.String()),
			attribute.String("side", string(req.Side)),
		),
	)
	defer span.End()

	if c.config.APIKey == "" || c.config.APISecret == "" {
		return domain.Order{}, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	params := url.Values{}
	params.Set("symbol", c.venueSymbol(req.Symbol))
	params.Set("side", strings.ToUpper(string(req.Side)))
	params.Set("type", strings.ToUpper(string(req.Type)))
	params.Set("quantity", req.Quantity.String())
	if req.Type == domain.OrderTypeLimit {
		params.Set("timeInForce", "GTC")
		params.Set("price", req.Price.String())
	}

	var result orderResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "order")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeader("X-MBX-APIKEY", c.config.APIKey).
		SetRawQuery(c.sign(params)).
		SetResult(&result).
		Post(ctx, orderEndpoint)
	if err != nil {
		span.RecordError(err)
		return domain.Order{}, apperror.New(apperror.CodeOrderRejected,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "symbol": req.Symbol.String()}))
	}
	if resp.IsError() {
		return domain.Order{}, apperror.New(apperror.CodeOrderRejected,
			apperror.WithContext(map[string]any{"exchange": Name, "status": resp.StatusCode}))
	}

	return normalizeOrder(req.Symbol, result), nil
}

// CancelOrder cancels an open order.
func (c *Connector) CancelOrder(ctx context.Context, symbol domain.Symbol, orderID string) error {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.cancel_order",
		trace.WithAttributes(attribute.String("order_id", orderID)),
	)
	defer span.End()

	if c.config.APIKey == "" || c.config.APISecret == "" {
		return apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	params := url.Values{}
	params.Set("symbol", c.venueSymbol(symbol))
	params.Set("orderId", orderID)

	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeader("X-MBX-APIKEY", c.config.APIKey).
		SetRawQuery(c.sign(params)).
		Delete(ctx, orderEndpoint)
	if err != nil {
		span.RecordError(err)
		return apperror.New(apperror.CodeConnectorRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "order_id": orderID}))
	}
	if resp.IsError() {
		return apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithContext(map[string]any{"exchange": Name, "status": resp.StatusCode}))
	}
	return nil
}

// GetOrder fetches the current state of an order.
func (c *Connector) GetOrder(ctx context.Context, symbol domain.Symbol, orderID string) (domain.Order, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.get_order",
		trace.WithAttributes(attribute.String("order_id", orderID)),
	)
	defer span.End()

	if c.config.APIKey == "" || c.config.APISecret == "" {
		return domain.Order{}, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	params := url.Values{}
	params.Set("symbol", c.venueSymbol(symbol))
	params.Set("orderId", orderID)

	var result orderResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeader("X-MBX-APIKEY", c.config.APIKey).
		SetRawQuery(c.sign(params)).
		SetResult(&result).
		Get(ctx, orderEndpoint)
	if err != nil {
		span.RecordError(err)
		return domain.Order{}, apperror.New(apperror.CodeConnectorRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "order_id": orderID}))
	}
	if resp.IsError() {
		return domain.Order{}, apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithContext(map[string]any{"exchange": Name, "status": resp.StatusCode}))
	}

	return normalizeOrder(symbol, result), nil
}

// Transfer moves funds between the spot and funding wallets.
func (c *Connector) Transfer(ctx context.Context, req domain.TransferRequest) (string, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.transfer",
		trace.WithAttributes(attribute.String("asset", req.Asset)),
	)
	defer span.End()

	if c.config.APIKey == "" || c.config.APISecret == "" {
		return "", apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	from := walletCode(req.From)
	to := walletCode(req.To)
	if from == to {
		return "", apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(map[string]any{"from": string(req.From), "to": string(req.To)}))
	}

	params := url.Values{}
	params.Set("type", from+"_"+to)
	params.Set("asset", strings.ToUpper(req.Asset))
	params.Set("amount", req.Amount.String())

	var result transferResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeader("X-MBX-APIKEY", c.config.APIKey).
		SetRawQuery(c.sign(params)).
		SetResult(&result).
		Post(ctx, transferEndpoint)
	if err != nil {
		span.RecordError(err)
		return "", apperror.New(apperror.CodeConnectorRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "asset": req.Asset}))
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithContext(map[string]any{"exchange": Name, "status": resp.StatusCode}))
	}

	return strconv.FormatInt(result.TranID, 10), nil
}

// Withdraw requests an on-chain withdrawal.
func (c *Connector) Withdraw(ctx context.Context, req domain.WithdrawalRequest) (string, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "binance.withdraw",
		trace.WithAttributes(attribute.String("asset", req.Asset)),
	)
	defer span.End()

	if c.config.APIKey == "" || c.config.APISecret == "" {
		return "", apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	params := url.Values{}
	params.Set("coin", strings.ToUpper(req.Asset))
	params.Set("address", req.Address)
	params.Set("amount", req.Amount.String())
	if req.Network != "" {
		params.Set("network", req.Network)
	}

	var result withdrawResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeader("X-MBX-APIKEY", c.config.APIKey).
		SetRawQuery(c.sign(params)).
		SetResult(&result).
		Post(ctx, withdrawEndpoint)
	if err != nil {
		span.RecordError(err)
		return "", apperror.New(apperror.CodeConnectorRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "asset": req.Asset}))
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithContext(map[string]any{"exchange": Name, "status": resp.StatusCode}))
	}

	return result.ID, nil
}

// walletCode maps a normalized account type to Binance's wallet code.
// The spot wallet doubles as the trading wallet.
func walletCode(t domain.AccountType) string {
	if t == domain.AccountFunding {
		return "FUNDING"
	}
	return "MAIN"
}

// Close releases connector resources.
func (c *Connector) Close() error {
	if c.stream != nil {
		return c.stream.Close()
	}
	return nil
}

// sign appends timestamp and recvWindow, then an HMAC-SHA256 signature
// over the encoded query string. Signed endpoints require the exact
// signed string on the wire.
func (c *Connector) sign(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", recvWindow)

	query := params.Encode()
	mac := hmac.New(sha256.New, []byte(c.config.APISecret))
	mac.Write([]byte(query))
	signature := hex.EncodeToString(mac.Sum(nil))

	return query + "&signature=" + signature
}
