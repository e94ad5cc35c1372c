package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func levels(pairs ...[2]string) []PriceLevel {
	out := make([]PriceLevel, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, PriceLevel{
			Price:    decimal.RequireFromString(p[0]),
			Quantity: decimal.RequireFromString(p[1]),
		})
	}
	return out
}

func TestOrderBook_Validate(t *testing.T) {
	symbol := NewSymbol("BTC", "USDT")

	tests := []struct {
		name    string
		bids    []PriceLevel
		asks    []PriceLevel
		wantErr bool
	}{
		{
			name: "valid",
			bids: levels([2]string{"100", "1"}, [2]string{"99", "2"}),
			asks: levels([2]string{"101", "1"}, [2]string{"102", "2"}),
		},
		{
			name: "empty_sides",
		},
		{
			name:    "bids_ascending",
			bids:    levels([2]string{"99", "1"}, [2]string{"100", "1"}),
			wantErr: true,
		},
		{
			name:    "asks_descending",
			asks:    levels([2]string{"102", "1"}, [2]string{"101", "1"}),
			wantErr: true,
		},
		{
			name:    "zero_quantity",
			bids:    levels([2]string{"100", "0"}),
			wantErr: true,
		},
		{
			name:    "negative_price",
			asks:    levels([2]string{"-1", "1"}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ob := OrderBook{Symbol: symbol, Bids: tt.bids, Asks: tt.asks}
			err := ob.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestOrderBook_BestLevels(t *testing.T) {
	ob := OrderBook{
		Bids: levels([2]string{"100", "1"}, [2]string{"99", "2"}),
		Asks: levels([2]string{"101", "3"}),
	}

	bid, ok := ob.BestBid()
	if !ok || !bid.Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("BestBid = %v, %v", bid, ok)
	}
	ask, ok := ob.BestAsk()
	if !ok || !ask.Price.Equal(decimal.NewFromInt(101)) {
		t.Errorf("BestAsk = %v, %v", ask, ok)
	}

	empty := OrderBook{}
	if _, ok := empty.BestBid(); ok {
		t.Error("empty book must have no best bid")
	}
	if _, ok := empty.BestAsk(); ok {
		t.Error("empty book must have no best ask")
	}
}

func TestOrderBook_IsCrossed(t *testing.T) {
	normal := OrderBook{
		Bids: levels([2]string{"100", "1"}),
		Asks: levels([2]string{"101", "1"}),
	}
	if normal.IsCrossed() {
		t.Error("bid below ask must not be crossed")
	}

	crossed := OrderBook{
		Bids: levels([2]string{"101", "1"}),
		Asks: levels([2]string{"100", "1"}),
	}
	if !crossed.IsCrossed() {
		t.Error("bid above ask must be crossed")
	}

	touching := OrderBook{
		Bids: levels([2]string{"100", "1"}),
		Asks: levels([2]string{"100", "1"}),
	}
	if !touching.IsCrossed() {
		t.Error("equal best prices count as crossed")
	}

	oneSided := OrderBook{Bids: levels([2]string{"100", "1"})}
	if oneSided.IsCrossed() {
		t.Error("one sided book cannot be crossed")
	}
}
