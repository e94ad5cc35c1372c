// Package kucoin implements the exchange connector for KuCoin spot.
package kucoin

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
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
	Name = "kucoin"

	tracerName = "kucoin"

	BaseAPIURL = "https://api.kucoin.com"

	symbolsEndpoint   = "/api/v2/symbols"
	timestampEndpoint = "/api/v1/timestamp"
	level2Endpoint    = "/api/v1/market/orderbook/level2_20"
	level2Deep        = "/api/v1/market/orderbook/level2_100"
	level1Endpoint    = "/api/v1/market/orderbook/level1"
	tradeFeeEndpoint  = "/api/v1/trade-fees"
	accountsEndpoint  = "/api/v1/accounts"
	ordersEndpoint    = "/api/v1/orders"
	transferEndpoint  = "/api/v2/accounts/inner-transfer"
	withdrawEndpoint  = "/api/v1/withdrawals"

	httpTimeout = 10 * time.Second

	// trade-fees accepts at most 10 symbols per call
	feeBatchSize = 10
)

// Config holds connector configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	APISecret      string
	APIPassphrase  string
	RequestsPerMin int
	MaxInFlight    int
	Timeout        time.Duration
}

// Connector is the KuCoin spot adapter. Venue symbols are dash separated
// ("BTC-USDT") so translation is direct in both directions and no symbol
// table needs to be kept.
type Connector struct {
	config Config
	client httpclient.Client
	logger logger.LoggerInterface
	tracer apm.Tracer
}

// New creates a KuCoin connector.
func New(cfg Config, log logger.LoggerInterface) (*Connector, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}

	perMin := cfg.RequestsPerMin
	if perMin <= 0 {
		perMin = 600
	}
	inFlight := cfg.MaxInFlight
	if inFlight <= 0 {
		inFlight = 10
	}
	gate := ratelimit.NewGate(perMin, inFlight)

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

	return &Connector{
		config: cfg,
		client: client,
		logger: log,
		tracer: apm.NewTracer(tracerName),
	}, nil
}

// Name returns the venue identifier.
func (c *Connector) Name() string {
	return Name
}

// Initialize loads the symbol table.
func (c *Connector) Initialize(ctx context.Context) error {
	_, err := c.GetExchangeInfo(ctx)
	return err
}

// venueSymbol converts a canonical symbol to KuCoin notation.
func venueSymbol(symbol domain.Symbol) string {
	return symbol.Base + "-" + symbol.Quote
}

// canonicalSymbol parses KuCoin notation back to canonical.
func canonicalSymbol(venue string) (domain.Symbol, bool) {
	parts := strings.SplitN(venue, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.Symbol{}, false
	}
	return domain.NewSymbol(parts[0], parts[1]), true
}

// GetExchangeInfo fetches listed pairs.
func (c *Connector) GetExchangeInfo(ctx context.Context) (domain.ExchangeInfo, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.symbols")
	defer span.End()

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "symbols")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetResult(&env).
		Get(ctx, symbolsEndpoint)
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

	var entries []symbolEntry
	if err := decodeData(env, &entries); err != nil {
		span.RecordError(err)
		return domain.ExchangeInfo{}, apperror.New(apperror.CodeExchangeInfoFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	info := domain.ExchangeInfo{
		Exchange:   Name,
		ServerTime: c.serverTime(ctx),
		Symbols:    make([]domain.SymbolInfo, 0, len(entries)),
	}

	for _, e := range entries {
		canonical := domain.NewSymbol(e.BaseCurrency, e.QuoteCurrency)

		status := domain.SymbolStatusHalted
		if e.EnableTrading {
			status = domain.SymbolStatusTrading
		}
		entry := domain.SymbolInfo{
			Symbol: canonical,
			Status: status,
		}
		if v, err := decimal.NewFromString(e.BaseMinSize); err == nil {
			entry.MinQty = v
		}
		if v, err := decimal.NewFromString(e.PriceIncrement); err == nil {
			entry.MinPrice = v
			entry.PricePrecision = incrementPrecision(v)
		}
		if v, err := decimal.NewFromString(e.BaseIncrement); err == nil {
			entry.QtyPrecision = incrementPrecision(v)
		}
		info.Symbols = append(info.Symbols, entry)
	}

	span.SetAttributes(attribute.Int("symbols", len(info.Symbols)))
	return info, nil
}

// incrementPrecision derives decimal places from a tick or lot increment,
// e.g. 0.0001 yields 4.
func incrementPrecision(inc decimal.Decimal) int32 {
	if exp := inc.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}

// serverTime fetches the venue clock. Best effort, zero when unreachable.
func (c *Connector) serverTime(ctx context.Context) time.Time {
	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "timestamp")),
	).
		SetResult(&env).
		Get(ctx, timestampEndpoint)
	if err != nil || resp.IsError() {
		return time.Time{}
	}
	var millis int64
	if err := decodeData(env, &millis); err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis).UTC()
}

// GetTicker fetches the best bid/offer for a pair.
func (c *Connector) GetTicker(ctx context.Context, symbol domain.Symbol) (domain.Ticker, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.ticker",
		trace.WithAttributes(attribute.String("symbol", symbol.String())),
	)
	defer span.End()

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "level1")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetQueryParam("symbol", venueSymbol(symbol)).
		SetResult(&env).
		Get(ctx, level1Endpoint)
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

	var data level1Data
	if err := decodeData(env, &data); err != nil {
		span.RecordError(err)
		return domain.Ticker{}, apperror.New(apperror.CodeTickerFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "symbol": symbol.String()}))
	}

	return normalizeTicker(symbol, data)
}

// GetOrderBook fetches a part-depth snapshot. KuCoin serves fixed depths
// of 20 and 100 levels.
func (c *Connector) GetOrderBook(ctx context.Context, symbol domain.Symbol, depth int) (domain.OrderBook, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.orderbook",
		trace.WithAttributes(
			attribute.String("symbol", symbol.String()),
			attribute.Int("depth", depth),
		),
	)
	defer span.End()

	endpoint := level2Endpoint
	if depth > 20 {
		endpoint = level2Deep
	}

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "level2"),
			httpclient.NewLabel("symbol", symbol.String()),
		),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetQueryParam("symbol", venueSymbol(symbol)).
		SetResult(&env).
		Get(ctx, endpoint)
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

	var data level2Data
	if err := decodeData(env, &data); err != nil {
		span.RecordError(err)
		return domain.OrderBook{}, apperror.New(apperror.CodeOrderbookFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name, "symbol": symbol.String()}))
	}

	book, err := normalizeOrderBook(symbol, data)
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

// GetTradingFees fetches per-pair rates in batches of ten. Without
// credentials the default schedule is returned.
func (c *Connector) GetTradingFees(ctx context.Context, symbols []domain.Symbol) (map[string]domain.TradingFee, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.trade_fees",
		trace.WithAttributes(attribute.Int("symbols", len(symbols))),
	)
	defer span.End()

	fees := make(map[string]domain.TradingFee, len(symbols))

	if !c.hasCredentials() {
		for _, s := range symbols {
			fees[s.String()] = domain.DefaultTradingFee(s)
		}
		return fees, nil
	}

	for start := 0; start < len(symbols); start += feeBatchSize {
		end := start + feeBatchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		venueSymbols := make([]string, 0, len(batch))
		for _, s := range batch {
			venueSymbols = append(venueSymbols, venueSymbol(s))
		}
		query := "symbols=" + strings.Join(venueSymbols, ",")

		var env envelope
		resp, err := c.client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "tradeFees")),
			httpclient.WithResponseErrorHandler(errorHandler),
		).
			SetHeaders(c.signHeaders("GET", tradeFeeEndpoint+"?"+query, "")).
			SetRawQuery(query).
			SetResult(&env).
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

		var entries []tradeFeeEntry
		if err := decodeData(env, &entries); err != nil {
			span.RecordError(err)
			return nil, apperror.New(apperror.CodeFeeFetchFailed,
				apperror.WithCause(err),
				apperror.WithContext(map[string]any{"exchange": Name}))
		}

		byVenue := make(map[string]tradeFeeEntry, len(entries))
		for _, e := range entries {
			byVenue[e.Symbol] = e
		}
		for _, s := range batch {
			entry, ok := byVenue[venueSymbol(s)]
			if !ok {
				fees[s.String()] = domain.DefaultTradingFee(s)
				continue
			}
			maker, errM := decimal.NewFromString(entry.MakerFeeRate)
			taker, errT := decimal.NewFromString(entry.TakerFeeRate)
			if errM != nil || errT != nil {
				fees[s.String()] = domain.DefaultTradingFee(s)
				continue
			}
			fees[s.String()] = domain.TradingFee{Symbol: s, Maker: maker, Taker: taker}
		}
	}

	return fees, nil
}

// GetBalance fetches the trade account balance for one asset.
func (c *Connector) GetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.balance",
		trace.WithAttributes(attribute.String("asset", asset)),
	)
	defer span.End()

	if !c.hasCredentials() {
		return domain.Balance{}, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	asset = strings.ToUpper(asset)
	query := "currency=" + asset + "&type=trade"

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "accounts")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeaders(c.signHeaders("GET", accountsEndpoint+"?"+query, "")).
		SetRawQuery(query).
		SetResult(&env).
		Get(ctx, accountsEndpoint)
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

	var entries []accountEntry
	if err := decodeData(env, &entries); err != nil {
		span.RecordError(err)
		return domain.Balance{}, apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	for _, e := range entries {
		if !strings.EqualFold(e.Currency, asset) {
			continue
		}
		free, errF := decimal.NewFromString(e.Available)
		holds, errH := decimal.NewFromString(e.Holds)
		if errF != nil || errH != nil {
			return domain.Balance{}, apperror.New(apperror.CodeInvalidFormat)
		}
		return domain.Balance{Asset: asset, Free: free, Locked: holds}, nil
	}
	return domain.Balance{Asset: asset, Free: decimal.Zero, Locked: decimal.Zero}, nil
}

// PlaceOrder submits an order. KuCoin requires a client order id.
func (c *Connector) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.place_order",
		trace.WithAttributes(
			attribute.String("symbol", req.Symbol.String()),
			attribute.String("side", string(req.Side)),
		),
	)
	defer span.End()

	if !c.hasCredentials() {
		return domain.Order{}, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	payload := map[string]string{
		"clientOid": uuid.NewString(),
		"symbol":    venueSymbol(req.Symbol),
		"side":      string(req.Side),
		"type":      string(req.Type),
		"size":      req.Quantity.String(),
	}
	if req.Type == domain.OrderTypeLimit {
		payload["price"] = req.Price.String()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Order{}, apperror.New(apperror.CodeInternalError, apperror.WithCause(err))
	}

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "orders")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeaders(c.signHeaders("POST", ordersEndpoint, string(body))).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&env).
		Post(ctx, ordersEndpoint)
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

	var created orderCreatedData
	if err := decodeData(env, &created); err != nil {
		span.RecordError(err)
		return domain.Order{}, apperror.New(apperror.CodeOrderRejected,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	return c.GetOrder(ctx, req.Symbol, created.OrderID)
}

// CancelOrder cancels an open order.
func (c *Connector) CancelOrder(ctx context.Context, symbol domain.Symbol, orderID string) error {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.cancel_order",
		trace.WithAttributes(attribute.String("order_id", orderID)),
	)
	defer span.End()

	if !c.hasCredentials() {
		return apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	endpoint := ordersEndpoint + "/" + orderID

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeaders(c.signHeaders("DELETE", endpoint, "")).
		SetResult(&env).
		Delete(ctx, endpoint)
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
	return decodeData(env, nil)
}

// GetOrder fetches the current state of an order.
func (c *Connector) GetOrder(ctx context.Context, symbol domain.Symbol, orderID string) (domain.Order, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.get_order",
		trace.WithAttributes(attribute.String("order_id", orderID)),
	)
	defer span.End()

	if !c.hasCredentials() {
		return domain.Order{}, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	endpoint := ordersEndpoint + "/" + orderID

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeaders(c.signHeaders("GET", endpoint, "")).
		SetResult(&env).
		Get(ctx, endpoint)
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

	var data orderData
	if err := decodeData(env, &data); err != nil {
		span.RecordError(err)
		return domain.Order{}, apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	return normalizeOrder(symbol, data), nil
}

// Transfer moves funds between the main and trade accounts. KuCoin
// requires a client order id on inner transfers.
func (c *Connector) Transfer(ctx context.Context, req domain.TransferRequest) (string, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.transfer",
		trace.WithAttributes(attribute.String("asset", req.Asset)),
	)
	defer span.End()

	if !c.hasCredentials() {
		return "", apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	from := accountName(req.From)
	to := accountName(req.To)
	if from == to {
		return "", apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(map[string]any{"from": string(req.From), "to": string(req.To)}))
	}

	payload := map[string]string{
		"clientOid": uuid.NewString(),
		"currency":  strings.ToUpper(req.Asset),
		"from":      from,
		"to":        to,
		"amount":    req.Amount.String(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperror.New(apperror.CodeInternalError, apperror.WithCause(err))
	}

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "innerTransfer")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeaders(c.signHeaders("POST", transferEndpoint, string(body))).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&env).
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

	var data transferData
	if err := decodeData(env, &data); err != nil {
		span.RecordError(err)
		return "", apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}
	return data.OrderID, nil
}

// Withdraw requests an on-chain withdrawal from the main account.
func (c *Connector) Withdraw(ctx context.Context, req domain.WithdrawalRequest) (string, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.withdraw",
		trace.WithAttributes(attribute.String("asset", req.Asset)),
	)
	defer span.End()

	if !c.hasCredentials() {
		return "", apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext(map[string]any{"exchange": Name}))
	}

	payload := map[string]string{
		"currency": strings.ToUpper(req.Asset),
		"address":  req.Address,
		"amount":   req.Amount.String(),
	}
	if req.Network != "" {
		payload["chain"] = req.Network
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperror.New(apperror.CodeInternalError, apperror.WithCause(err))
	}

	var env envelope
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "withdrawals")),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetHeaders(c.signHeaders("POST", withdrawEndpoint, string(body))).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&env).
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

	var data withdrawalData
	if err := decodeData(env, &data); err != nil {
		span.RecordError(err)
		return "", apperror.New(apperror.CodeConnectorAPIError,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"exchange": Name}))
	}
	return data.WithdrawalID, nil
}

// accountName maps a normalized account type to KuCoin's account name.
// Funding activity runs through the main account.
func accountName(t domain.AccountType) string {
	if t == domain.AccountTrading {
		return "trade"
	}
	return "main"
}

// Close releases connector resources.
func (c *Connector) Close() error {
	return nil
}

func (c *Connector) hasCredentials() bool {
	return c.config.APIKey != "" && c.config.APISecret != "" && c.config.APIPassphrase != ""
}

// signHeaders builds the KC-API-* header set for a signed request. The
// signature covers timestamp + method + endpoint (with query) + body,
// and the passphrase itself is signed (key version 2).
func (c *Connector) signHeaders(method, endpointWithQuery, body string) map[string]string {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	mac := hmac.New(sha256.New, []byte(c.config.APISecret))
	mac.Write([]byte(timestamp + method + endpointWithQuery + body))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	passMac := hmac.New(sha256.New, []byte(c.config.APISecret))
	passMac.Write([]byte(c.config.APIPassphrase))
	passphrase := base64.StdEncoding.EncodeToString(passMac.Sum(nil))

	return map[string]string{
		"KC-API-KEY":         c.config.APIKey,
		"KC-API-SIGN":        signature,
		"KC-API-TIMESTAMP":   timestamp,
		"KC-API-PASSPHRASE":  passphrase,
		"KC-API-KEY-VERSION": "2",
	}
}
