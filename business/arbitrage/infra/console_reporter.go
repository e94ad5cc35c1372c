// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-scanner/business/arbitrage/domain"
)

var hundred = decimal.NewFromInt(100)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Report outputs an arbitrage opportunity to the console.
func (r *ConsoleReporter) Report(ctx context.Context, opp domain.Opportunity) error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Timestamp:      %s\n", opp.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Pair:           %s\n", opp.Symbol.String())
	fmt.Fprintf(r.out, "Direction:      buy %s / sell %s\n", opp.BuyExchange, opp.SellExchange)
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PRICES")
	fmt.Fprintf(r.out, "  Buy  (%s):  %s\n", opp.BuyExchange, opp.BuyPrice.StringFixed(8))
	fmt.Fprintf(r.out, "  Sell (%s):  %s\n", opp.SellExchange, opp.SellPrice.StringFixed(8))
	fmt.Fprintf(r.out, "  Spread:         %s%%\n", opp.SpreadPct().StringFixed(4))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "TRADE DETAILS")
	fmt.Fprintf(r.out, "  Capital:        %s %s\n", opp.Capital.StringFixed(2), opp.Symbol.Quote)
	fmt.Fprintf(r.out, "  Size:           %s %s\n", opp.Profit.CoinsBought.StringFixed(8), opp.Symbol.Base)
	fmt.Fprintf(r.out, "  Buy slippage:   %s%%\n", opp.Profit.BuySlippage.Mul(hundred).StringFixed(4))
	fmt.Fprintf(r.out, "  Sell slippage:  %s%%\n", opp.Profit.SellSlippage.Mul(hundred).StringFixed(4))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PROFIT")
	fmt.Fprintf(r.out, "  Net:            %s %s (%s%%)\n",
		opp.Profit.NetProfit.StringFixed(4), opp.Symbol.Quote, opp.Profit.ProfitPct.StringFixed(4))
	fmt.Fprintln(r.out, "================================================================================")
	return nil
}
