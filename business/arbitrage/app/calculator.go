package app

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-scanner/business/arbitrage/domain"
	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// CalculatorConfig holds slippage policy.
type CalculatorConfig struct {
	// MaxSlippage caps each leg's estimated slippage fraction when
	// CapEnabled is set, so one pathological book level cannot distort
	// the whole estimate.
	MaxSlippage decimal.Decimal
	CapEnabled  bool
}

// Calculator simulates round trips against cached order books.
type Calculator struct {
	cache  *MarketCache
	config CalculatorConfig
}

// NewCalculator creates a calculator reading from the given cache.
func NewCalculator(cache *MarketCache, cfg CalculatorConfig) *Calculator {
	return &Calculator{cache: cache, config: cfg}
}

// EstimateSlippage walks one side of the book from the best price
// outward until amount (base quantity) is filled or depth runs out, and
// returns the fractional degradation of the size-weighted average fill
// price versus the best price. Partial fills are summarized, not
// rejected. Results clamp to zero and, when the cap is enabled, to the
// configured maximum.
func (c *Calculator) EstimateSlippage(book exchange.OrderBook, amount decimal.Decimal, side exchange.Side) decimal.Decimal {
	var levels []exchange.PriceLevel
	if side == exchange.SideBuy {
		levels = book.Asks
	} else {
		levels = book.Bids
	}

	if len(levels) == 0 || amount.Sign() <= 0 {
		return decimal.Zero
	}

	best := levels[0].Price
	if best.Sign() <= 0 {
		return decimal.Zero
	}

	remaining := amount
	filled := decimal.Zero
	cost := decimal.Zero

	for _, level := range levels {
		take := level.Quantity
		if take.GreaterThan(remaining) {
			take = remaining
		}
		cost = cost.Add(take.Mul(level.Price))
		filled = filled.Add(take)
		remaining = remaining.Sub(take)
		if remaining.Sign() <= 0 {
			break
		}
	}

	if filled.Sign() <= 0 {
		return decimal.Zero
	}

	avg := cost.Div(filled)

	var slippage decimal.Decimal
	if side == exchange.SideBuy {
		slippage = avg.Sub(best).Div(best)
	} else {
		slippage = best.Sub(avg).Div(best)
	}

	if slippage.Sign() < 0 {
		return decimal.Zero
	}
	if c.config.CapEnabled && slippage.GreaterThan(c.config.MaxSlippage) {
		return c.config.MaxSlippage
	}
	return slippage
}

// CalculatePotentialProfit simulates buying notional worth of the symbol
// on buyExchange's asks and selling the acquired coins into
// sellExchange's bids, with taker fee on the buy leg and maker fee on
// the sell leg. Missing books or empty relevant sides yield a zero
// estimate, which signals "not computable yet" rather than an error.
func (c *Calculator) CalculatePotentialProfit(symbol exchange.Symbol, buyExchange, sellExchange string, notional decimal.Decimal) domain.ProfitEstimate {
	if notional.Sign() <= 0 {
		return domain.ProfitEstimate{}
	}

	buySnap, okBuy := c.cache.Book(symbol, buyExchange)
	sellSnap, okSell := c.cache.Book(symbol, sellExchange)
	if !okBuy || !okSell {
		return domain.ProfitEstimate{}
	}

	bestAsk, okAsk := buySnap.Book.BestAsk()
	bestBid, okBid := sellSnap.Book.BestBid()
	if !okAsk || !okBid || bestAsk.Price.Sign() <= 0 || bestBid.Price.Sign() <= 0 {
		return domain.ProfitEstimate{}
	}

	// Asset-quantity approximation for the slippage walk.
	quantity := notional.Div(bestAsk.Price)

	buySlippage := c.EstimateSlippage(buySnap.Book, quantity, exchange.SideBuy)
	sellSlippage := c.EstimateSlippage(sellSnap.Book, quantity, exchange.SideSell)

	adjustedBuy := bestAsk.Price.Mul(one.Add(buySlippage))
	adjustedSell := bestBid.Price.Mul(one.Sub(sellSlippage))

	buyFee := c.cache.Fee(buyExchange, symbol).Taker
	sellFee := c.cache.Fee(sellExchange, symbol).Maker

	coinsBought := notional.Sub(notional.Mul(buyFee)).Div(adjustedBuy)
	saleProceeds := coinsBought.Mul(adjustedSell).Mul(one.Sub(sellFee))

	profit := saleProceeds.Sub(notional)
	profitPct := profit.Div(notional).Mul(hundred)

	return domain.ProfitEstimate{
		NetProfit:    profit,
		ProfitPct:    profitPct,
		CoinsBought:  coinsBought,
		BuyFee:       buyFee,
		SellFee:      sellFee,
		BuySlippage:  buySlippage,
		SellSlippage: sellSlippage,
	}
}

// AdjustedPrices recomputes the slippage-adjusted leg prices for a
// symbol pairing, for inclusion in emitted opportunities.
func (c *Calculator) AdjustedPrices(symbol exchange.Symbol, buyExchange, sellExchange string, estimate domain.ProfitEstimate) (buy, sell decimal.Decimal) {
	buySnap, okBuy := c.cache.Book(symbol, buyExchange)
	sellSnap, okSell := c.cache.Book(symbol, sellExchange)
	if !okBuy || !okSell {
		return decimal.Zero, decimal.Zero
	}
	bestAsk, okAsk := buySnap.Book.BestAsk()
	bestBid, okBid := sellSnap.Book.BestBid()
	if !okAsk || !okBid {
		return decimal.Zero, decimal.Zero
	}
	buy = bestAsk.Price.Mul(one.Add(estimate.BuySlippage))
	sell = bestBid.Price.Mul(one.Sub(estimate.SellSlippage))
	return buy, sell
}
