package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-scanner/internal/apperror"
)

// PriceLevel is a single order book level.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook is a normalized depth snapshot. Bids are sorted best (highest)
// first, asks best (lowest) first. Levels with zero quantity are dropped
// during normalization.
type OrderBook struct {
	Symbol    Symbol
	Exchange  string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Timestamp time.Time
}

// Validate checks the ordering and positivity invariants.
func (ob *OrderBook) Validate() error {
	for i, level := range ob.Bids {
		if level.Price.Sign() <= 0 || level.Quantity.Sign() <= 0 {
			return apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithMessage("bid level not positive"),
				apperror.WithContext(map[string]any{"symbol": ob.Symbol.String(), "level": i}))
		}
		if i > 0 && level.Price.GreaterThan(ob.Bids[i-1].Price) {
			return apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithMessage("bids not sorted descending"),
				apperror.WithContext(map[string]any{"symbol": ob.Symbol.String(), "level": i}))
		}
	}
	for i, level := range ob.Asks {
		if level.Price.Sign() <= 0 || level.Quantity.Sign() <= 0 {
			return apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithMessage("ask level not positive"),
				apperror.WithContext(map[string]any{"symbol": ob.Symbol.String(), "level": i}))
		}
		if i > 0 && level.Price.LessThan(ob.Asks[i-1].Price) {
			return apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithMessage("asks not sorted ascending"),
				apperror.WithContext(map[string]any{"symbol": ob.Symbol.String(), "level": i}))
		}
	}
	return nil
}

// BestBid returns the highest bid level, or false when the book is empty.
func (ob *OrderBook) BestBid() (PriceLevel, bool) {
	if len(ob.Bids) == 0 {
		return PriceLevel{}, false
	}
	return ob.Bids[0], true
}

// BestAsk returns the lowest ask level, or false when the book is empty.
func (ob *OrderBook) BestAsk() (PriceLevel, bool) {
	if len(ob.Asks) == 0 {
		return PriceLevel{}, false
	}
	return ob.Asks[0], true
}

// IsCrossed reports whether best bid >= best ask, which means the
// snapshot is internally inconsistent.
func (ob *OrderBook) IsCrossed() bool {
	bid, okB := ob.BestBid()
	ask, okA := ob.BestAsk()
	if !okB || !okA {
		return false
	}
	return bid.Price.GreaterThanOrEqual(ask.Price)
}

// Age returns how stale the snapshot is relative to now.
func (ob *OrderBook) Age(now time.Time) time.Duration {
	return now.Sub(ob.Timestamp)
}
