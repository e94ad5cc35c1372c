package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField      Code = "REQUIRED_FIELD"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidFormat      Code = "INVALID_FORMAT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Connector error codes
const (
	CodeConnectorRequestFailed Code = "CONNECTOR_REQUEST_FAILED"
	CodeConnectorAPIError      Code = "CONNECTOR_API_ERROR"
	CodeRateLimitExceeded      Code = "RATE_LIMIT_EXCEEDED"
	CodeMissingCredentials     Code = "MISSING_CREDENTIALS"
	CodeOrderbookFetchFailed   Code = "ORDERBOOK_FETCH_FAILED"
	CodeInvalidOrderbook       Code = "INVALID_ORDERBOOK"
	CodeTickerFetchFailed      Code = "TICKER_FETCH_FAILED"
	CodeFeeFetchFailed         Code = "FEE_FETCH_FAILED"
	CodeExchangeInfoFailed     Code = "EXCHANGE_INFO_FAILED"
	CodeOrderRejected          Code = "ORDER_REJECTED"
)

// WebSocket error codes
const (
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"
)

// Engine error codes
const (
	CodeDiscoveryFailed        Code = "DISCOVERY_FAILED"
	CodePriceCalculationFailed Code = "PRICE_CALCULATION_FAILED"
	CodeInsufficientLiquidity  Code = "INSUFFICIENT_LIQUIDITY"
	CodeCircuitOpen            Code = "CIRCUIT_OPEN"
)

// Integration error codes
const (
	CodeNotificationFailed Code = "NOTIFICATION_FAILED"
	CodeRankingFailed      Code = "RANKING_FAILED"
)
