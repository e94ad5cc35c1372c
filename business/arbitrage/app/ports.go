package app

import (
	"context"

	"github.com/fd1az/arb-scanner/business/arbitrage/domain"
)

// Ranker returns ranked coin base assets for symbol discovery. Errors
// trigger the fallback pair set, never a startup failure.
type Ranker interface {
	GetRankedCoins(ctx context.Context, startRank, endRank int) ([]string, error)
}

// Reporter consumes detected opportunities. Implementations must not
// block the scan loop; dispatch is fire-and-forget and errors are
// logged at the call site.
type Reporter interface {
	Report(ctx context.Context, opp domain.Opportunity) error
}
