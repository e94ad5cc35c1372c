package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProfitEstimate_Thresholds(t *testing.T) {
	estimate := ProfitEstimate{
		NetProfit: decimal.RequireFromString("8.99"),
		ProfitPct: decimal.RequireFromString("0.899"),
	}

	if !estimate.IsProfitable() {
		t.Error("positive net profit must be profitable")
	}
	if !estimate.MeetsThreshold(decimal.RequireFromString("0.5")) {
		t.Error("0.899% must meet a 0.5% floor")
	}
	if !estimate.MeetsThreshold(decimal.RequireFromString("0.899")) {
		t.Error("threshold is inclusive")
	}
	if estimate.MeetsThreshold(decimal.NewFromInt(1)) {
		t.Error("0.899% must not meet a 1% floor")
	}

	loss := ProfitEstimate{NetProfit: decimal.RequireFromString("-3")}
	if loss.IsProfitable() {
		t.Error("negative net profit must not be profitable")
	}
}

func TestOpportunity_SpreadPct(t *testing.T) {
	opp := Opportunity{
		BuyPrice:  decimal.NewFromInt(50000),
		SellPrice: decimal.NewFromInt(50500),
	}
	want := decimal.NewFromInt(1)
	if got := opp.SpreadPct(); !got.Equal(want) {
		t.Errorf("SpreadPct = %s, want %s", got, want)
	}

	zero := Opportunity{}
	if !zero.SpreadPct().IsZero() {
		t.Error("zero buy price must yield zero spread")
	}
}
