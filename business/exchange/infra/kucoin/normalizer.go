package kucoin

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-scanner/business/exchange/domain"
	"github.com/fd1az/arb-scanner/internal/apperror"
)

// normalizeOrderBook converts a level2 snapshot. Both sides arrive best
// first; malformed rows and zero-size levels are dropped rather than
// failing the book.
func normalizeOrderBook(symbol domain.Symbol, data level2Data) (domain.OrderBook, error) {
	ts := time.Now().UTC()
	if data.Time > 0 {
		ts = time.UnixMilli(data.Time).UTC()
	}

	book := domain.OrderBook{
		Symbol:    symbol,
		Exchange:  Name,
		Bids:      normalizeLevels(data.Bids),
		Asks:      normalizeLevels(data.Asks),
		Timestamp: ts,
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
		size, err := decimal.NewFromString(entry[1])
		if err != nil || size.Sign() == 0 {
			continue
		}
		levels = append(levels, domain.PriceLevel{Price: price, Quantity: size})
	}
	return levels
}

// normalizeTicker converts a level1 snapshot. Missing sides surface as
// an error because a one-sided quote cannot seed a comparison.
func normalizeTicker(symbol domain.Symbol, data level1Data) (domain.Ticker, error) {
	if data.BestBid == "" || data.BestAsk == "" {
		return domain.Ticker{}, apperror.New(apperror.CodeTickerFetchFailed,
			apperror.WithMessage("level1 snapshot missing a side"),
			apperror.WithContext(map[string]any{"exchange": Name, "symbol": symbol.String()}))
	}

	bid, err := decimal.NewFromString(data.BestBid)
	if err != nil {
		return domain.Ticker{}, apperror.New(apperror.CodeInvalidFormat, apperror.WithCause(err))
	}
	ask, err := decimal.NewFromString(data.BestAsk)
	if err != nil {
		return domain.Ticker{}, apperror.New(apperror.CodeInvalidFormat, apperror.WithCause(err))
	}

	last := decimal.Zero
	if data.Price != "" {
		if p, err := decimal.NewFromString(data.Price); err == nil {
			last = p
		}
	}

	ts := time.Now().UTC()
	if data.Time > 0 {
		ts = time.UnixMilli(data.Time).UTC()
	}

	return domain.Ticker{
		Symbol:    symbol,
		Exchange:  Name,
		Bid:       bid,
		Ask:       ask,
		Last:      last,
		Timestamp: ts,
	}, nil
}

// normalizeOrder converts an order payload into the normalized view. The
// symbol is resolved from the payload when present.
func normalizeOrder(symbol domain.Symbol, data orderData) domain.Order {
	if parsed, ok := canonicalSymbol(data.Symbol); ok {
		symbol = parsed
	}

	qty, _ := decimal.NewFromString(data.Size)
	filled, _ := decimal.NewFromString(data.DealSize)
	price, _ := decimal.NewFromString(data.Price)

	avg := decimal.Zero
	if filled.Sign() > 0 {
		if funds, err := decimal.NewFromString(data.DealFunds); err == nil && funds.Sign() > 0 {
			avg = funds.Div(filled)
		}
	}

	return domain.Order{
		ID:        data.ID,
		Symbol:    symbol,
		Exchange:  Name,
		Side:      normalizeSide(data.Side),
		Type:      normalizeType(data.Type),
		Status:    normalizeStatus(data),
		Quantity:  qty,
		FilledQty: filled,
		Price:     price,
		AvgPrice:  avg,
		CreatedAt: time.UnixMilli(data.CreatedAt).UTC(),
	}
}

func normalizeSide(side string) domain.Side {
	if side == "sell" {
		return domain.SideSell
	}
	return domain.SideBuy
}

func normalizeType(orderType string) domain.OrderType {
	if orderType == "limit" {
		return domain.OrderTypeLimit
	}
	return domain.OrderTypeMarket
}

// normalizeStatus derives a lifecycle state. KuCoin reports activity
// flags rather than an explicit status.
func normalizeStatus(data orderData) domain.OrderStatus {
	filled, _ := decimal.NewFromString(data.DealSize)
	size, _ := decimal.NewFromString(data.Size)

	switch {
	case data.CancelExist:
		return domain.OrderStatusCanceled
	case !data.IsActive && size.Sign() > 0 && filled.GreaterThanOrEqual(size):
		return domain.OrderStatusFilled
	case filled.Sign() > 0:
		return domain.OrderStatusPartiallyFilled
	default:
		return domain.OrderStatusNew
	}
}
