package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:      "Required field is missing",
	CodeInvalidInput:       "Invalid input provided",
	CodeInvalidFormat:      "Invalid data format",
	CodeNotFound:           "Resource not found",
	CodeConfigurationError: "Configuration error",
	CodeInternalError:      "Internal error",
	CodeUnknownError:       "An unknown error occurred",

	CodeConnectorRequestFailed: "Exchange request failed",
	CodeConnectorAPIError:      "Exchange API returned an error",
	CodeRateLimitExceeded:      "Rate limit exceeded",
	CodeMissingCredentials:     "API credentials not configured",
	CodeOrderbookFetchFailed:   "Failed to fetch order book",
	CodeInvalidOrderbook:       "Invalid order book data",
	CodeTickerFetchFailed:      "Failed to fetch ticker",
	CodeFeeFetchFailed:         "Failed to fetch trading fees",
	CodeExchangeInfoFailed:     "Failed to fetch exchange info",
	CodeOrderRejected:          "Order rejected by exchange",

	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	CodeDiscoveryFailed:        "Symbol discovery failed",
	CodePriceCalculationFailed: "Price calculation failed",
	CodeInsufficientLiquidity:  "Insufficient liquidity for trade size",
	CodeCircuitOpen:            "Circuit breaker is open",

	CodeNotificationFailed: "Failed to deliver notification",
	CodeRankingFailed:      "Failed to fetch coin rankings",
}
