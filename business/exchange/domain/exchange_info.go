package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SymbolStatus is the trading status of a pair on a venue.
type SymbolStatus string

const (
	SymbolStatusTrading SymbolStatus = "trading"
	SymbolStatusHalted  SymbolStatus = "halted"
)

// SymbolInfo describes one listed pair and its trading constraints.
// Precisions are decimal places; minimums are zero when the venue does
// not publish them.
type SymbolInfo struct {
	Symbol         Symbol
	Status         SymbolStatus
	MinPrice       decimal.Decimal
	MinQty         decimal.Decimal
	PricePrecision int32
	QtyPrecision   int32
}

// ExchangeInfo lists the pairs a venue supports.
type ExchangeInfo struct {
	Exchange   string
	ServerTime time.Time
	Symbols    []SymbolInfo
}

// TradableSymbols returns the symbols currently open for trading.
func (e ExchangeInfo) TradableSymbols() []Symbol {
	out := make([]Symbol, 0, len(e.Symbols))
	for _, info := range e.Symbols {
		if info.Status == SymbolStatusTrading {
			out = append(out, info.Symbol)
		}
	}
	return out
}

// Supports reports whether the venue lists the symbol for trading.
func (e ExchangeInfo) Supports(symbol Symbol) bool {
	for _, info := range e.Symbols {
		if info.Symbol == symbol && info.Status == SymbolStatusTrading {
			return true
		}
	}
	return false
}
