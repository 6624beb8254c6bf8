// Package models defines the core domain entities: pairs, score results, and alerts.
package models

import (
	"errors"
	"time"
)

// TxnCounts holds buy/sell transaction counts for one time window.
type TxnCounts struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// Total returns buys + sells.
func (t TxnCounts) Total() int {
	return t.Buys + t.Sells
}

// WindowFloats holds a float metric (volume, price change) per time window.
type WindowFloats struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

// WindowTxns holds transaction counts per time window.
type WindowTxns struct {
	M5  TxnCounts `json:"m5"`
	H1  TxnCounts `json:"h1"`
	H24 TxnCounts `json:"h24"`
}

// Pair is a normalized snapshot of a DEX trading pair at fetch time.
// PairAddress is the stable identity used for deduplication. Numeric
// fields are zero when the feed omits them so downstream math is total;
// CreatedAt is the zero time when the feed did not report pair genesis.
type Pair struct {
	PairAddress  string       `json:"pair_address"`
	ChainID      string       `json:"chain_id"`
	Name         string       `json:"name,omitempty"`
	Symbol       string       `json:"symbol,omitempty"`
	BaseAddress  string       `json:"base_address,omitempty"`
	URL          string       `json:"url,omitempty"`
	LiquidityUSD float64      `json:"liquidity_usd"`
	MarketCapUSD float64      `json:"market_cap_usd"`
	Volume       WindowFloats `json:"volume"`
	PriceChange  WindowFloats `json:"price_change"`
	Txns         WindowTxns   `json:"txns"`
	CreatedAt    time.Time    `json:"created_at"`
	FetchedAt    time.Time    `json:"fetched_at"`
}

// Validate checks pair field constraints.
func (p *Pair) Validate() error {
	if p.PairAddress == "" {
		return errors.New("pair address must not be empty")
	}
	if p.ChainID == "" {
		return errors.New("chain ID must not be empty")
	}
	if p.LiquidityUSD < 0 {
		return errors.New("liquidity must not be negative")
	}
	if p.MarketCapUSD < 0 {
		return errors.New("market cap must not be negative")
	}
	if p.Volume.M5 < 0 || p.Volume.H1 < 0 || p.Volume.H24 < 0 {
		return errors.New("volume must not be negative")
	}
	if p.Txns.M5.Buys < 0 || p.Txns.M5.Sells < 0 ||
		p.Txns.H1.Buys < 0 || p.Txns.H1.Sells < 0 ||
		p.Txns.H24.Buys < 0 || p.Txns.H24.Sells < 0 {
		return errors.New("transaction counts must not be negative")
	}
	return nil
}

// Age returns the pair age at the given instant, or a negative duration
// when CreatedAt is unknown (zero time).
func (p *Pair) Age(now time.Time) time.Duration {
	if p.CreatedAt.IsZero() {
		return -1
	}
	return now.Sub(p.CreatedAt)
}

// AgeMinutes returns the pair age in whole minutes, -1 when unknown.
func (p *Pair) AgeMinutes(now time.Time) int {
	if p.CreatedAt.IsZero() {
		return -1
	}
	return int(now.Sub(p.CreatedAt).Minutes())
}
