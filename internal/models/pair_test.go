package models

import (
	"testing"
	"time"
)

func validPair() Pair {
	return Pair{
		PairAddress:  "pair-1",
		ChainID:      "solana",
		Symbol:       "TEST",
		LiquidityUSD: 12000,
		MarketCapUSD: 50000,
		CreatedAt:    time.Now().Add(-3 * time.Minute),
	}
}

func TestPairValidate(t *testing.T) {
	p := validPair()
	if err := p.Validate(); err != nil {
		t.Fatalf("valid pair rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Pair)
	}{
		{"empty address", func(p *Pair) { p.PairAddress = "" }},
		{"empty chain", func(p *Pair) { p.ChainID = "" }},
		{"negative liquidity", func(p *Pair) { p.LiquidityUSD = -1 }},
		{"negative market cap", func(p *Pair) { p.MarketCapUSD = -1 }},
		{"negative volume", func(p *Pair) { p.Volume.M5 = -1 }},
		{"negative 5m txns", func(p *Pair) { p.Txns.M5.Buys = -1 }},
		{"negative 1h txns", func(p *Pair) { p.Txns.H1.Sells = -1 }},
		{"negative 24h txns", func(p *Pair) { p.Txns.H24.Sells = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPair()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// A pair with no metrics at all is still valid: absent upstream fields
// normalize to zero, never to an error.
func TestPairValidate_ZeroMetrics(t *testing.T) {
	p := Pair{PairAddress: "bare", ChainID: "solana"}
	if err := p.Validate(); err != nil {
		t.Fatalf("zero-metric pair rejected: %v", err)
	}
}

func TestPairAge(t *testing.T) {
	now := time.Now()
	p := validPair()
	p.CreatedAt = now.Add(-90 * time.Second)

	if got := p.Age(now); got != 90*time.Second {
		t.Errorf("Age = %v, want 90s", got)
	}
	if got := p.AgeMinutes(now); got != 1 {
		t.Errorf("AgeMinutes = %d, want 1", got)
	}
}

func TestPairAge_UnknownCreation(t *testing.T) {
	p := validPair()
	p.CreatedAt = time.Time{}

	if got := p.Age(time.Now()); got >= 0 {
		t.Errorf("Age for unknown creation = %v, want negative", got)
	}
	if got := p.AgeMinutes(time.Now()); got != -1 {
		t.Errorf("AgeMinutes = %d, want -1", got)
	}
}

func TestTxnCountsTotal(t *testing.T) {
	tc := TxnCounts{Buys: 8, Sells: 4}
	if got := tc.Total(); got != 12 {
		t.Errorf("Total = %d, want 12", got)
	}
}
