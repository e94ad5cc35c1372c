// Package cmc ranks coins by market cap using the CoinMarketCap API.
package cmc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fd1az/arb-scanner/internal/apperror"
	"github.com/fd1az/arb-scanner/internal/circuitbreaker"
	"github.com/fd1az/arb-scanner/internal/httpclient"
)

const (
	// BaseURL is the CoinMarketCap Pro API host.
	BaseURL = "https://pro-api.coinmarketcap.com"

	mapEndpoint = "/v1/cryptocurrency/map"

	apiKeyHeader = "X-CMC_PRO_API_KEY"

	defaultTimeout = 15 * time.Second

	// The map endpoint caps limit at 5000 per request.
	maxPageSize = 5000
)

// stablecoins are excluded from ranking output; pegged assets never
// carry an exploitable cross-venue spread.
var stablecoins = map[string]bool{
	"USDT": true, "USDC": true, "DAI": true, "BUSD": true,
	"TUSD": true, "USDP": true, "FDUSD": true, "USDD": true,
}

// Config holds API credentials and client options.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Ranker fetches coin symbols ordered by market cap rank. Calls run
// through a circuit breaker so a degraded CMC API cannot stall symbol
// discovery.
type Ranker struct {
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[[]string]
}

type mapResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data []struct {
		Symbol string `json:"symbol"`
		Rank   int    `json:"rank"`
	} `json:"data"`
}

// New builds a CMC ranker.
func New(cfg Config) (*Ranker, error) {
	if cfg.APIKey == "" {
		return nil, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext("coinmarketcap api key"))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(baseURL),
		httpclient.WithProviderName("coinmarketcap"),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(map[string]string{apiKeyHeader: cfg.APIKey}),
	)
	if err != nil {
		return nil, err
	}

	return &Ranker{
		client:  client,
		breaker: circuitbreaker.New[[]string](circuitbreaker.DefaultConfig("cmc_ranker")),
	}, nil
}

// GetRankedCoins returns coin symbols with cmc_rank in [startRank,
// endRank], ordered by rank.
func (r *Ranker) GetRankedCoins(ctx context.Context, startRank, endRank int) ([]string, error) {
	if startRank < 1 || endRank < startRank {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("rank range %d-%d", startRank, endRank)))
	}

	return r.breaker.Execute(func() ([]string, error) {
		return r.fetchRange(ctx, startRank, endRank)
	})
}

func (r *Ranker) fetchRange(ctx context.Context, startRank, endRank int) ([]string, error) {
	limit := endRank - startRank + 1
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var result mapResponse

	resp, err := r.client.NewRequest().
		SetQueryParams(map[string]string{
			"sort":  "cmc_rank",
			"start": strconv.Itoa(startRank),
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&result).
		Get(ctx, mapEndpoint)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRankingFailed, "coinmarketcap request")
	}

	if resp.IsError() || result.Status.ErrorCode != 0 {
		return nil, apperror.New(apperror.CodeRankingFailed,
			apperror.WithContext(fmt.Sprintf("status %d: %s", resp.StatusCode, result.Status.ErrorMessage)))
	}

	coins := make([]string, 0, len(result.Data))
	for _, entry := range result.Data {
		if entry.Rank < startRank || entry.Rank > endRank {
			continue
		}
		if stablecoins[entry.Symbol] {
			continue
		}
		coins = append(coins, entry.Symbol)
	}

	return coins, nil
}
