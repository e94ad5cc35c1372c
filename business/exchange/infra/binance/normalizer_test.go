package binance

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-scanner/business/exchange/domain"
)

func TestNormalizeOrderBook(t *testing.T) {
	symbol := domain.NewSymbol("BTC", "USDT")

	t.Run("valid_snapshot", func(t *testing.T) {
		book, err := normalizeOrderBook(symbol,
			[][]string{{"50000.10", "1.5"}, {"49999.90", "2"}},
			[][]string{{"50001.00", "0.7"}, {"50002.50", "3"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if book.Exchange != Name || book.Symbol != symbol {
			t.Errorf("book identity = %s %s", book.Exchange, book.Symbol)
		}
		if len(book.Bids) != 2 || len(book.Asks) != 2 {
			t.Fatalf("levels = %d bids, %d asks", len(book.Bids), len(book.Asks))
		}
		if !book.Bids[0].Price.Equal(decimal.RequireFromString("50000.10")) {
			t.Errorf("best bid = %s", book.Bids[0].Price)
		}
	})

	t.Run("zero_quantity_dropped", func(t *testing.T) {
		book, err := normalizeOrderBook(symbol,
			[][]string{{"50000", "1"}, {"49999", "0"}},
			[][]string{{"50001", "0.00000000"}, {"50002", "1"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(book.Bids) != 1 || len(book.Asks) != 1 {
			t.Errorf("levels = %d bids, %d asks; zero quantities must drop",
				len(book.Bids), len(book.Asks))
		}
	})

	t.Run("bad_price_dropped", func(t *testing.T) {
		book, err := normalizeOrderBook(symbol,
			[][]string{{"abc", "1"}, {"50000", "1"}}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(book.Bids) != 1 {
			t.Errorf("bids = %d, non numeric price must drop", len(book.Bids))
		}
	})

	t.Run("short_level_dropped", func(t *testing.T) {
		book, err := normalizeOrderBook(symbol,
			[][]string{{"50000", "1"}, {"49999"}},
			[][]string{{"50001", "1"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(book.Bids) != 1 || len(book.Asks) != 1 {
			t.Errorf("levels = %d bids, %d asks; partial rows must drop",
				len(book.Bids), len(book.Asks))
		}
	})

	t.Run("unsorted_side_rejected", func(t *testing.T) {
		if _, err := normalizeOrderBook(symbol,
			[][]string{{"49999", "1"}, {"50000", "1"}}, nil); err == nil {
			t.Fatal("expected error for ascending bids")
		}
	})
}

func TestNormalizeOrderBook_Idempotent(t *testing.T) {
	symbol := domain.NewSymbol("BTC", "USDT")
	rawBids := [][]string{{"50000.10", "1.5"}, {"49999.90", "2"}, {"49999"}}
	rawAsks := [][]string{{"50001.00", "0.7"}, {"bad", "1"}}

	first, err := normalizeOrderBook(symbol, rawBids, rawAsks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := normalizeOrderBook(symbol, rawBids, rawAsks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Bids) != len(second.Bids) || len(first.Asks) != len(second.Asks) {
		t.Fatalf("level counts differ between runs")
	}
	for i := range first.Bids {
		if !first.Bids[i].Price.Equal(second.Bids[i].Price) ||
			!first.Bids[i].Quantity.Equal(second.Bids[i].Quantity) {
			t.Errorf("bid %d differs between runs", i)
		}
	}
	for i := range first.Asks {
		if !first.Asks[i].Price.Equal(second.Asks[i].Price) ||
			!first.Asks[i].Quantity.Equal(second.Asks[i].Quantity) {
			t.Errorf("ask %d differs between runs", i)
		}
	}
}

func TestNormalizeOrder(t *testing.T) {
	symbol := domain.NewSymbol("BTC", "USDT")

	order := normalizeOrder(symbol, orderResponse{
		OrderID:             123456,
		Side:                "SELL",
		Type:                "LIMIT",
		Status:              "PARTIALLY_FILLED",
		OrigQty:             "2",
		ExecutedQty:         "0.5",
		Price:               "50000",
		CummulativeQuoteQty: "25010",
		TransactTime:        1700000000000,
	})

	if order.ID != "123456" {
		t.Errorf("ID = %s", order.ID)
	}
	if order.Side != domain.SideSell || order.Type != domain.OrderTypeLimit {
		t.Errorf("side/type = %s/%s", order.Side, order.Type)
	}
	if order.Status != domain.OrderStatusPartiallyFilled {
		t.Errorf("status = %s", order.Status)
	}
	if !order.AvgPrice.Equal(decimal.NewFromInt(50020)) {
		t.Errorf("AvgPrice = %s, want 50020", order.AvgPrice)
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.OrderStatus
	}{
		{"NEW", domain.OrderStatusNew},
		{"PARTIALLY_FILLED", domain.OrderStatusPartiallyFilled},
		{"FILLED", domain.OrderStatusFilled},
		{"CANCELED", domain.OrderStatusCanceled},
		{"EXPIRED", domain.OrderStatusCanceled},
		{"REJECTED", domain.OrderStatusRejected},
		{"SOMETHING_ELSE", domain.OrderStatusRejected},
	}
	for _, tt := range tests {
		if got := normalizeStatus(tt.raw); got != tt.want {
			t.Errorf("normalizeStatus(%s) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
