package domain

import (
	"github.com/shopspring/decimal"
)

// DefaultFeeRate is assumed for both maker and taker when a venue does
// not report fees for a pair.
var DefaultFeeRate = decimal.RequireFromString("0.001")

// TradingFee holds maker and taker rates for one pair, as fractions
// (0.001 = 0.1%).
type TradingFee struct {
	Symbol Symbol
	Maker  decimal.Decimal
	Taker  decimal.Decimal
}

// DefaultTradingFee returns the fallback fee schedule for a pair.
func DefaultTradingFee(symbol Symbol) TradingFee {
	return TradingFee{
		Symbol: symbol,
		Maker:  DefaultFeeRate,
		Taker:  DefaultFeeRate,
	}
}
