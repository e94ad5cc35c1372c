package binance

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-scanner/business/exchange/domain"
)

// normalizeOrderBook converts raw [[price, qty], ...] string levels into
// a validated snapshot. Malformed rows and zero-quantity levels are
// dropped rather than failing the book.
func normalizeOrderBook(symbol domain.Symbol, rawBids, rawAsks [][]string) (domain.OrderBook, error) {
	book := domain.OrderBook{
		Symbol:    symbol,
		Exchange:  Name,
		Bids:      normalizeLevels(rawBids),
		Asks:      normalizeLevels(rawAsks),
		Timestamp: time.Now().UTC(),
	}
	if err := book.Validate(); err != nil {
		return domain.OrderBook{}, err
	}
	return book, nil
}

func normalizeLevels(raw [][]string) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 2 {
			continue
		}
		price, err := decimal.NewFromString(entry[0])
		if err != nil {
			continue
		}
		qty, err := decimal.NewFromString(entry[1])
		if err != nil || qty.Sign() == 0 {
			continue
		}
		levels = append(levels, domain.PriceLevel{Price: price, Quantity: qty})
	}
	return levels
}

// normalizeOrder converts an order response into the normalized view.
func normalizeOrder(symbol domain.Symbol, raw orderResponse) domain.Order {
	qty, _ := decimal.NewFromString(raw.OrigQty)
	filled, _ := decimal.NewFromString(raw.ExecutedQty)
	price, _ := decimal.NewFromString(raw.Price)

	avg := decimal.Zero
	if filled.Sign() > 0 {
		if quote, err := decimal.NewFromString(raw.CummulativeQuoteQty); err == nil && quote.Sign() > 0 {
			avg = quote.Div(filled)
		}
	}

	ts := raw.TransactTime
	if ts == 0 {
		ts = raw.Time
	}

	return domain.Order{
		ID:        formatOrderID(raw.OrderID),
		Symbol:    symbol,
		Exchange:  Name,
		Side:      normalizeSide(raw.Side),
		Type:      normalizeType(raw.Type),
		Status:    normalizeStatus(raw.Status),
		Quantity:  qty,
		FilledQty: filled,
		Price:     price,
		AvgPrice:  avg,
		CreatedAt: time.UnixMilli(ts).UTC(),
	}
}

func formatOrderID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func normalizeSide(side string) domain.Side {
	if side == "SELL" {
		return domain.SideSell
	}
	return domain.SideBuy
}

func normalizeType(orderType string) domain.OrderType {
	if orderType == "LIMIT" {
		return domain.OrderTypeLimit
	}
	return domain.OrderTypeMarket
}

func normalizeStatus(status string) domain.OrderStatus {
	switch status {
	case "NEW":
		return domain.OrderStatusNew
	case "PARTIALLY_FILLED":
		return domain.OrderStatusPartiallyFilled
	case "FILLED":
		return domain.OrderStatusFilled
	case "CANCELED", "EXPIRED":
		return domain.OrderStatusCanceled
	default:
		return domain.OrderStatusRejected
	}
}
