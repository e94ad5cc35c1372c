// Package app defines the ports exchange connectors must implement.
package app

import (
	"context"

	"github.com/fd1az/arb-scanner/business/exchange/domain"
)

// Connector is the normalization contract every venue adapter fulfills.
// All returned data uses canonical symbols and decimal amounts; adapter
// errors are wrapped as structured errors with the venue name attached.
type Connector interface {
	// Name returns the venue identifier, e.g. "binance".
	Name() string

	// Initialize verifies connectivity and loads venue metadata.
	Initialize(ctx context.Context) error

	// GetExchangeInfo returns the pairs the venue lists.
	GetExchangeInfo(ctx context.Context) (domain.ExchangeInfo, error)

	// GetTicker returns the top-of-book quote for a pair.
	GetTicker(ctx context.Context, symbol domain.Symbol) (domain.Ticker, error)

	// GetOrderBook returns a depth snapshot, at most depth levels a side.
	GetOrderBook(ctx context.Context, symbol domain.Symbol, depth int) (domain.OrderBook, error)

	// GetTradingFees returns maker/taker rates for the given pairs.
	// Venues that only report account-level fees return the same rate
	// for every pair.
	GetTradingFees(ctx context.Context, symbols []domain.Symbol) (map[string]domain.TradingFee, error)

	// GetBalance returns the account balance for one asset. Requires
	// credentials.
	GetBalance(ctx context.Context, asset string) (domain.Balance, error)

	// PlaceOrder submits an order. Requires credentials.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)

	// CancelOrder cancels an open order. Requires credentials.
	CancelOrder(ctx context.Context, symbol domain.Symbol, orderID string) error

	// GetOrder fetches the current state of an order. Requires credentials.
	GetOrder(ctx context.Context, symbol domain.Symbol, orderID string) (domain.Order, error)

	// Transfer moves funds between venue-internal wallets. Requires
	// credentials.
	Transfer(ctx context.Context, req domain.TransferRequest) (string, error)

	// Withdraw requests an on-chain withdrawal and returns the venue's
	// withdrawal id. Requires credentials.
	Withdraw(ctx context.Context, req domain.WithdrawalRequest) (string, error)

	// Close releases connector resources.
	Close() error
}

// Streamer is implemented by connectors that can push top-of-book
// updates over a persistent connection.
type Streamer interface {
	// StreamTickers subscribes to quote updates for the given pairs.
	// The channel closes when the stream shuts down.
	StreamTickers(ctx context.Context, symbols []domain.Symbol) (<-chan domain.Ticker, error)
}
