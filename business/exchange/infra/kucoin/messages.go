package kucoin

import (
	"encoding/json"
	"fmt"
)

const successCode = "200000"

// envelope is the response wrapper every KuCoin endpoint uses.
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

type symbolEntry struct {
	Symbol         string `json:"symbol"`
	BaseCurrency   string `json:"baseCurrency"`
	QuoteCurrency  string `json:"quoteCurrency"`
	EnableTrading  bool   `json:"enableTrading"`
	BaseMinSize    string `json:"baseMinSize"`
	PriceIncrement string `json:"priceIncrement"`
	BaseIncrement  string `json:"baseIncrement"`
}

// level2Data is the part-depth order book payload.
type level2Data struct {
	Time     int64      `json:"time"`
	Sequence string     `json:"sequence"`
	Bids     [][]string `json:"bids"` // [[price, size], ...] best first
	Asks     [][]string `json:"asks"` // [[price, size], ...] best first
}

// level1Data is the best bid/offer payload.
type level1Data struct {
	Time        int64  `json:"time"`
	Price       string `json:"price"`
	BestBid     string `json:"bestBid"`
	BestBidSize string `json:"bestBidSize"`
	BestAsk     string `json:"bestAsk"`
	BestAskSize string `json:"bestAskSize"`
}

// tradeFeeEntry is one element of the signed /api/v1/trade-fees payload.
type tradeFeeEntry struct {
	Symbol       string `json:"symbol"`
	TakerFeeRate string `json:"takerFeeRate"`
	MakerFeeRate string `json:"makerFeeRate"`
}

// accountEntry is one element of the signed /api/v1/accounts payload.
type accountEntry struct {
	Currency  string `json:"currency"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Available string `json:"available"`
	Holds     string `json:"holds"`
}

// orderCreatedData is the order placement payload.
type orderCreatedData struct {
	OrderID string `json:"orderId"`
}

// orderData is the order query payload.
type orderData struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	DealSize    string `json:"dealSize"`
	DealFunds   string `json:"dealFunds"`
	IsActive    bool   `json:"isActive"`
	CancelExist bool   `json:"cancelExist"`
	CreatedAt   int64  `json:"createdAt"`
}

// transferData is the inner-transfer placement payload.
type transferData struct {
	OrderID string `json:"orderId"`
}

// withdrawalData is the withdrawal placement payload.
type withdrawalData struct {
	WithdrawalID string `json:"withdrawalId"`
}

// apiError is returned when the envelope code is not 200000.
type apiError struct {
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("kucoin API error %s: %s", e.Code, e.Message)
}

// errorHandler rejects HTTP-level failures; envelope codes are checked
// after decoding because KuCoin returns 200 with an error code inside.
func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil && env.Code != "" {
			return &apiError{Code: env.Code, Message: env.Message}
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}

// decodeData checks the envelope code and unmarshals its data.
func decodeData(env envelope, out interface{}) error {
	if env.Code != successCode {
		return &apiError{Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
