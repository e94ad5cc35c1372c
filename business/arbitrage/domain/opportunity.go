// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
)

// Opportunity represents a detected cross-exchange arbitrage opportunity:
// buy on one venue's asks, sell into another venue's bids.
type Opportunity struct {
	ID           string
	Timestamp    time.Time
	Symbol       exchange.Symbol
	BuyExchange  string
	SellExchange string
	BuyPrice     decimal.Decimal // slippage-adjusted effective buy price
	SellPrice    decimal.Decimal // slippage-adjusted effective sell price
	Capital      decimal.Decimal // quote capital committed to the estimate
	Profit       ProfitEstimate
}

// SpreadPct returns the raw price spread between venues as a percentage
// of the buy price.
func (o *Opportunity) SpreadPct() decimal.Decimal {
	if o.BuyPrice.Sign() <= 0 {
		return decimal.Zero
	}
	return o.SellPrice.Sub(o.BuyPrice).Div(o.BuyPrice).Mul(decimal.NewFromInt(100))
}

// String renders a one-line summary for logs and notifications.
func (o *Opportunity) String() string {
	return fmt.Sprintf("%s: buy %s @ %s, sell %s @ %s, profit %s (%s%%)",
		o.Symbol.String(),
		o.BuyExchange, o.BuyPrice.StringFixed(8),
		o.SellExchange, o.SellPrice.StringFixed(8),
		o.Profit.NetProfit.StringFixed(4),
		o.Profit.ProfitPct.StringFixed(4))
}

// ProfitEstimate is the outcome of simulating a round trip with fees and
// slippage applied.
type ProfitEstimate struct {
	NetProfit    decimal.Decimal // quote currency
	ProfitPct    decimal.Decimal // percentage of committed capital
	CoinsBought  decimal.Decimal // base amount acquired on the buy leg
	BuyFee       decimal.Decimal // taker fee fraction on the buy venue
	SellFee      decimal.Decimal // maker fee fraction on the sell venue
	BuySlippage  decimal.Decimal // fraction, already folded into BuyPrice
	SellSlippage decimal.Decimal // fraction, already folded into SellPrice
}

// IsProfitable returns true when net profit is positive.
func (p ProfitEstimate) IsProfitable() bool {
	return p.NetProfit.Sign() > 0
}

// MeetsThreshold returns true when profit percentage reaches minPct.
func (p ProfitEstimate) MeetsThreshold(minPct decimal.Decimal) bool {
	return p.ProfitPct.GreaterThanOrEqual(minPct)
}
