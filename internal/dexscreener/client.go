// Package dexscreener provides access to the DexScreener search API.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"alphascan/internal/models"
	"alphascan/internal/retry"
)

const defaultUserAgent = "alphascan/1.0"

// ClientConfig tunes request behavior.
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
}

// Client fetches trading pairs from the DexScreener API.
type Client struct {
	baseURL    string
	chainID    string
	httpClient *http.Client
	policy     retry.Policy
	now        func() time.Time
}

// NewClient creates a DexScreener client that keeps only pairs on chainID.
func NewClient(baseURL, chainID string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	return &Client{
		baseURL: baseURL,
		chainID: chainID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		policy: retry.Policy{
			MaxAttempts: cfg.MaxRetries,
			Backoff:     retry.LinearBackoff(cfg.RetryDelayBase),
			IsRetryable: IsRetryable,
		},
		now: time.Now,
	}
}

// pairResponse mirrors the /latest/dex/search payload.
type pairResponse struct {
	SchemaVersion string    `json:"schemaVersion"`
	Pairs         []rawPair `json:"pairs"`
}

type rawPair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	URL         string `json:"url"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	Txns struct {
		M5  rawTxns `json:"m5"`
		H1  rawTxns `json:"h1"`
		H24 rawTxns `json:"h24"`
	} `json:"txns"`
	Volume      rawWindows `json:"volume"`
	PriceChange rawWindows `json:"priceChange"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	FDV           float64 `json:"fdv"`
	PairCreatedAt int64   `json:"pairCreatedAt"` // epoch milliseconds, 0 when unknown
}

type rawTxns struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

type rawWindows struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

// Search fetches pairs matching query and normalizes them. Transient
// failures are retried with the configured policy; on exhaustion the
// wrapped *FetchError is returned and the caller treats the pass as empty.
func (c *Client) Search(ctx context.Context, query string) ([]models.Pair, error) {
	u, err := url.Parse(c.baseURL + "/latest/dex/search")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	var payload pairResponse
	err = c.policy.Do(ctx, func() error {
		return c.getJSON(ctx, u.String(), &payload)
	})
	if err != nil {
		return nil, err
	}

	fetchedAt := c.now()
	pairs := make([]models.Pair, 0, len(payload.Pairs))
	for _, rp := range payload.Pairs {
		if c.chainID != "" && rp.ChainID != c.chainID {
			continue
		}
		pairs = append(pairs, normalize(rp, fetchedAt))
	}
	return pairs, nil
}

func (c *Client) getJSON(ctx context.Context, urlStr string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return &FetchError{Kind: KindClientError, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A truncated body is usually an upstream hiccup, retry it.
		return &FetchError{Kind: KindServerError, Err: err}
	}
	return nil
}

func normalize(rp rawPair, fetchedAt time.Time) models.Pair {
	p := models.Pair{
		PairAddress:  rp.PairAddress,
		ChainID:      rp.ChainID,
		Name:         rp.BaseToken.Name,
		Symbol:       rp.BaseToken.Symbol,
		BaseAddress:  rp.BaseToken.Address,
		URL:          rp.URL,
		LiquidityUSD: rp.Liquidity.USD,
		MarketCapUSD: rp.FDV,
		Volume: models.WindowFloats{
			M5: rp.Volume.M5, H1: rp.Volume.H1, H24: rp.Volume.H24,
		},
		PriceChange: models.WindowFloats{
			M5: rp.PriceChange.M5, H1: rp.PriceChange.H1, H24: rp.PriceChange.H24,
		},
		Txns: models.WindowTxns{
			M5:  models.TxnCounts{Buys: rp.Txns.M5.Buys, Sells: rp.Txns.M5.Sells},
			H1:  models.TxnCounts{Buys: rp.Txns.H1.Buys, Sells: rp.Txns.H1.Sells},
			H24: models.TxnCounts{Buys: rp.Txns.H24.Buys, Sells: rp.Txns.H24.Sells},
		},
		FetchedAt: fetchedAt,
	}
	if rp.PairCreatedAt > 0 {
		p.CreatedAt = time.UnixMilli(rp.PairCreatedAt)
	}
	return p
}
