package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the order side.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType distinguishes market and limit orders.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderStatus is a normalized order lifecycle state.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// OrderRequest describes an order to place.
type OrderRequest struct {
	Symbol   Symbol
	Side     Side
	Type     OrderType
	Quantity decimal.Decimal
	Price    decimal.Decimal // limit orders only
}

// Order is a normalized view of a placed order.
type Order struct {
	ID         string
	Symbol     Symbol
	Exchange   string
	Side       Side
	Type       OrderType
	Status     OrderStatus
	Quantity   decimal.Decimal
	FilledQty  decimal.Decimal
	Price      decimal.Decimal
	AvgPrice   decimal.Decimal
	CreatedAt  time.Time
}

// AccountType identifies a venue-internal wallet.
type AccountType string

const (
	AccountMain    AccountType = "main"
	AccountTrading AccountType = "trade"
	AccountFunding AccountType = "funding"
)

// TransferRequest moves funds between two wallets on the same venue.
type TransferRequest struct {
	Asset  string
	Amount decimal.Decimal
	From   AccountType
	To     AccountType
}

// WithdrawalRequest sends funds to an external address.
type WithdrawalRequest struct {
	Asset   string
	Amount  decimal.Decimal
	Address string
	Network string // optional chain selector, venue default when empty
}

// Balance holds free and locked amounts for one asset.
type Balance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Total returns free plus locked.
func (b Balance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}
