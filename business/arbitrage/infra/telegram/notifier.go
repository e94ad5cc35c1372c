// Package telegram delivers opportunity alerts through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fd1az/arb-scanner/business/arbitrage/domain"
	"github.com/fd1az/arb-scanner/internal/apperror"
	"github.com/fd1az/arb-scanner/internal/httpclient"
)

const (
	// BaseURL is the Telegram Bot API host.
	BaseURL = "https://api.telegram.org"

	sendMessageEndpoint = "/sendMessage"

	defaultTimeout = 10 * time.Second
)

// Config holds bot credentials and delivery options.
type Config struct {
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// Notifier implements the Reporter port over the Telegram Bot API.
type Notifier struct {
	client httpclient.Client
	chatID string
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// New builds a Telegram notifier. The bot token becomes part of the
// request path, as the Bot API requires.
func New(cfg Config) (*Notifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("telegram bot token and chat id are required"))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(BaseURL+"/bot"+cfg.BotToken),
		httpclient.WithProviderName("telegram"),
		httpclient.WithRequestTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}

	return &Notifier{
		client: client,
		chatID: cfg.ChatID,
	}, nil
}

// Report sends a formatted opportunity alert.
func (n *Notifier) Report(ctx context.Context, opp domain.Opportunity) error {
	var result apiResponse

	resp, err := n.client.NewRequest().
		SetBody(sendMessageRequest{
			ChatID:    n.chatID,
			Text:      formatMessage(opp),
			ParseMode: "HTML",
		}).
		SetResult(&result).
		Post(ctx, sendMessageEndpoint)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeNotificationFailed, "telegram send failed")
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		return apperror.New(apperror.CodeNotificationFailed,
			apperror.WithContext(fmt.Sprintf("telegram api error %d: %s", result.ErrorCode, result.Description)))
	}

	return nil
}

// formatMessage renders an HTML alert the Bot API can display.
func formatMessage(opp domain.Opportunity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>Arbitrage: %s</b>\n", opp.Symbol.String())
	fmt.Fprintf(&b, "Buy on <b>%s</b> @ %s\n", opp.BuyExchange, opp.BuyPrice.StringFixed(8))
	fmt.Fprintf(&b, "Sell on <b>%s</b> @ %s\n", opp.SellExchange, opp.SellPrice.StringFixed(8))
	fmt.Fprintf(&b, "Capital: %s %s\n", opp.Capital.StringFixed(2), opp.Symbol.Quote)
	fmt.Fprintf(&b, "Net profit: <b>%s %s (%s%%)</b>\n",
		opp.Profit.NetProfit.StringFixed(4), opp.Symbol.Quote, opp.Profit.ProfitPct.StringFixed(4))
	fmt.Fprintf(&b, "Detected: %s", opp.Timestamp.Format(time.RFC3339))

	return b.String()
}
