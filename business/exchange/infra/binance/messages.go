package binance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// exchangeInfoResponse is the /api/v3/exchangeInfo payload, trimmed to
// the fields normalization needs.
type exchangeInfoResponse struct {
	ServerTime int64        `json:"serverTime"`
	Symbols    []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol              string         `json:"symbol"`
	Status              string         `json:"status"`
	BaseAsset           string         `json:"baseAsset"`
	QuoteAsset          string         `json:"quoteAsset"`
	BaseAssetPrecision  int32          `json:"baseAssetPrecision"`
	QuoteAssetPrecision int32          `json:"quoteAssetPrecision"`
	Filters             []symbolFilter `json:"filters"`
}

// symbolFilter carries the PRICE_FILTER and LOT_SIZE constraints.
type symbolFilter struct {
	FilterType string `json:"filterType"`
	MinPrice   string `json:"minPrice"`
	MinQty     string `json:"minQty"`
}

// depthResponse is the /api/v3/depth payload.
type depthResponse struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"` // [[price, qty], ...]
	Asks         [][]string `json:"asks"` // [[price, qty], ...]
}

// bookTickerResponse is the /api/v3/ticker/bookTicker payload.
type bookTickerResponse struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	BidQty   string `json:"bidQty"`
	AskPrice string `json:"askPrice"`
	AskQty   string `json:"askQty"`
}

// tradeFeeEntry is one element of the signed /sapi/v1/asset/tradeFee payload.
type tradeFeeEntry struct {
	Symbol          string `json:"symbol"`
	MakerCommission string `json:"makerCommission"`
	TakerCommission string `json:"takerCommission"`
}

// accountResponse is the signed /api/v3/account payload.
type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// orderResponse is the payload of order placement and query endpoints.
type orderResponse struct {
	OrderID             int64  `json:"orderId"`
	Symbol              string `json:"symbol"`
	Status              string `json:"status"`
	Side                string `json:"side"`
	Type                string `json:"type"`
	Price               string `json:"price"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	TransactTime        int64  `json:"transactTime"`
	Time                int64  `json:"time"`
}

// apiError is the error envelope returned with HTTP >= 400.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// errorHandler parses Binance API error responses.
func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}

// transferResponse is the body of POST /sapi/v1/asset/transfer.
type transferResponse struct {
	TranID int64 `json:"tranId"`
}

// withdrawResponse is the body of POST /sapi/v1/capital/withdraw/apply.
type withdrawResponse struct {
	ID string `json:"id"`
}

// streamEvent is the combined-streams wrapper for WebSocket messages.
type streamEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// bookTickerEvent is a @bookTicker stream payload.
type bookTickerEvent struct {
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

// bookTickerStream returns the stream name for a venue symbol.
func bookTickerStream(venueSymbol string) string {
	return strings.ToLower(venueSymbol) + "@bookTicker"
}
