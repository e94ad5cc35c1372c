package domain

import (
	"time"

	exchange "github.com/fd1az/arb-scanner/business/exchange/domain"
)

// MarketSnapshot is one venue's order book for a pair, stamped with the
// refresh time so staleness can be judged.
type MarketSnapshot struct {
	Exchange  string
	Book      exchange.OrderBook
	FetchedAt time.Time
}

// Fresh reports whether the snapshot is younger than maxAge. A zero
// maxAge disables the check.
func (s MarketSnapshot) Fresh(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	return now.Sub(s.FetchedAt) <= maxAge
}

// PairView holds the snapshots of one pair across venues, keyed by
// exchange name. A pair is comparable once two venues have data.
type PairView struct {
	Symbol    exchange.Symbol
	Snapshots map[string]MarketSnapshot
}

// Comparable reports whether at least two venues have snapshots.
func (v PairView) Comparable() bool {
	return len(v.Snapshots) >= 2
}
