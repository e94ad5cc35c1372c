package binance

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/arb-scanner/business/exchange/domain"
	"github.com/fd1az/arb-scanner/internal/apperror"
	"github.com/fd1az/arb-scanner/internal/logger"
	"github.com/fd1az/arb-scanner/internal/wsconn"
)

// streamFeed pushes top-of-book updates from the combined streams
// endpoint. Subscriptions are encoded in the URL so reconnects resume
// them automatically.
type streamFeed struct {
	conn    *wsconn.Client
	logger  logger.LoggerInterface
	updates metric.Int64Counter
	errs    metric.Int64Counter
}

// StreamTickers subscribes to @bookTicker updates for the given pairs.
func (c *Connector) StreamTickers(ctx context.Context, symbols []domain.Symbol) (<-chan domain.Ticker, error) {
	if len(symbols) == 0 {
		return nil, apperror.New(apperror.CodeRequiredField,
			apperror.WithMessage("no symbols to stream"))
	}

	wsURL, err := c.buildStreamURL(symbols)
	if err != nil {
		return nil, err
	}

	meter := otel.Meter(Name)
	updates, err := meter.Int64Counter(
		"binance_ticker_updates_total",
		metric.WithDescription("Total book ticker updates received"),
	)
	if err != nil {
		return nil, err
	}
	parseErrs, err := meter.Int64Counter(
		"binance_stream_parse_errors_total",
		metric.WithDescription("Stream message parse errors"),
	)
	if err != nil {
		return nil, err
	}

	feed := &streamFeed{
		conn:    wsconn.New(wsconn.DefaultConfig(wsURL)),
		logger:  c.logger,
		updates: updates,
		errs:    parseErrs,
	}
	c.stream = feed

	if err := feed.conn.Connect(ctx); err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "binance stream connected", "url", wsURL, "symbols", len(symbols))

	out := make(chan domain.Ticker, 100)
	go feed.pump(ctx, c, out)

	return out, nil
}

// buildStreamURL constructs the combined streams URL:
// /stream?streams=btcusdt@bookTicker/ethusdt@bookTicker
func (c *Connector) buildStreamURL(symbols []domain.Symbol) (string, error) {
	base := c.config.WSURL
	if base == "" {
		base = BaseWSURL
	}

	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		streams = append(streams, bookTickerStream(c.venueSymbol(s)))
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", apperror.New(apperror.CodeConfigurationError, apperror.WithCause(err))
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")

	return u.String(), nil
}

// pump converts raw stream messages into normalized tickers.
func (f *streamFeed) pump(ctx context.Context, c *Connector, out chan<- domain.Ticker) {
	defer close(out)

	for data := range f.conn.Messages() {
		var event streamEvent
		if err := json.Unmarshal(data, &event); err != nil {
			f.errs.Add(ctx, 1)
			continue
		}
		if !strings.HasSuffix(event.Stream, "@bookTicker") {
			continue
		}

		var tick bookTickerEvent
		if err := json.Unmarshal(event.Data, &tick); err != nil {
			f.errs.Add(ctx, 1)
			continue
		}

		symbol, ok := c.canonicalSymbol(tick.Symbol)
		if !ok {
			continue
		}
		bid, errB := decimal.NewFromString(tick.BidPrice)
		ask, errA := decimal.NewFromString(tick.AskPrice)
		if errB != nil || errA != nil {
			f.errs.Add(ctx, 1)
			continue
		}

		f.updates.Add(ctx, 1)

		ticker := domain.Ticker{
			Symbol:    symbol,
			Exchange:  Name,
			Bid:       bid,
			Ask:       ask,
			Timestamp: time.Now().UTC(),
		}

		select {
		case out <- ticker:
		case <-ctx.Done():
			return
		}
	}
}

// Close shuts down the stream connection.
func (f *streamFeed) Close() error {
	return f.conn.Close()
}
