package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a normalized top-of-book quote.
type Ticker struct {
	Symbol    Symbol
	Exchange  string
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Last      decimal.Decimal
	Timestamp time.Time
}

// Mid returns the midpoint of bid and ask, or Last when either side
// is missing.
func (t Ticker) Mid() decimal.Decimal {
	if t.Bid.Sign() <= 0 || t.Ask.Sign() <= 0 {
		return t.Last
	}
	return t.Bid.Add(t.Ask).Div(decimal.NewFromInt(2))
}
