// Package scoring computes the alpha score and its supporting heuristics
// for a fetched pair.
package scoring

import (
	"math"
	"time"

	"alphascan/internal/models"
)

// Config holds the thresholds and weights of the score composition.
type Config struct {
	// Freshness buckets, most-recent bucket wins.
	FreshAgeMinutes  int
	FreshBonus       int
	RecentAgeMinutes int
	RecentBonus      int

	LiquidityFloorUSD   float64
	LiquidityBonus      int
	LiquidityRatioFloor float64
	LiquidityRatioBonus int

	VolumeFloor5mUSD float64
	VolumeBonus      int

	SniperHighPenalty   int
	BundleRiskThreshold int
	BundleRiskPenalty   int

	// Sniper classifier thresholds.
	SniperHighVolume5m float64
	SniperHighBuys5m   int
	SniperMediumBuys5m int

	// Trending detector thresholds.
	TrendingPriceChange5m float64
	TrendingVolume5mUSD   float64
}

// DefaultConfig returns the reference weights.
func DefaultConfig() Config {
	return Config{
		FreshAgeMinutes:       5,
		FreshBonus:            25,
		RecentAgeMinutes:      15,
		RecentBonus:           15,
		LiquidityFloorUSD:     10000,
		LiquidityBonus:        20,
		LiquidityRatioFloor:   0.15,
		LiquidityRatioBonus:   10,
		VolumeFloor5mUSD:      10000,
		VolumeBonus:           15,
		SniperHighPenalty:     15,
		BundleRiskThreshold:   60,
		BundleRiskPenalty:     10,
		SniperHighVolume5m:    20000,
		SniperHighBuys5m:      15,
		SniperMediumBuys5m:    7,
		TrendingPriceChange5m: 30,
		TrendingVolume5mUSD:   15000,
	}
}

// Engine scores pairs. Pure: Score is deterministic for a fixed pair,
// config, and clock instant.
type Engine struct {
	config Config
}

// New creates an engine with the given config.
func New(config Config) *Engine {
	return &Engine{config: config}
}

// SniperLevel classifies early aggressive buying from the 5-minute window:
// heavy volume together with a high buy count means snipers are active.
func (e *Engine) SniperLevel(p models.Pair) models.SniperLevel {
	vol5m := p.Volume.M5
	buys5m := p.Txns.M5.Buys

	if vol5m > e.config.SniperHighVolume5m && buys5m > e.config.SniperHighBuys5m {
		return models.SniperHigh
	}
	if buys5m > e.config.SniperMediumBuys5m {
		return models.SniperMedium
	}
	return models.SniperLow
}

// BundleRisk estimates liquidity concentration relative to market cap as
// round(clamp(0,100,(1-liq/max(mc,1))*100)). This is a heuristic proxy,
// not an on-chain bundle measurement.
func (e *Engine) BundleRisk(p models.Pair) int {
	mc := math.Max(p.MarketCapUSD, 1)
	ratio := p.LiquidityUSD / mc
	return int(math.Round(clamp((1-ratio)*100, 0, 100)))
}

// Trending reports a sharp 5-minute pump backed by volume. It only
// flavors the alert headline; it never gates or scores.
func (e *Engine) Trending(p models.Pair) bool {
	return p.PriceChange.M5 > e.config.TrendingPriceChange5m &&
		p.Volume.M5 > e.config.TrendingVolume5mUSD
}

// Score computes the alpha score for a pair at the given instant. All
// contributions are summed first; the clamp to [0,100] applies once at
// the end.
func (e *Engine) Score(p models.Pair, now time.Time) models.ScoreResult {
	cfg := e.config
	res := models.ScoreResult{
		SniperLevel: e.SniperLevel(p),
		BundleRisk:  e.BundleRisk(p),
		Trending:    e.Trending(p),
	}

	if !p.CreatedAt.IsZero() {
		ageMinutes := now.Sub(p.CreatedAt).Minutes()
		switch {
		case ageMinutes < float64(cfg.FreshAgeMinutes):
			res.FreshnessBonus = cfg.FreshBonus
		case ageMinutes < float64(cfg.RecentAgeMinutes):
			res.FreshnessBonus = cfg.RecentBonus
		}
	}

	if p.LiquidityUSD > cfg.LiquidityFloorUSD {
		res.LiquidityBonus = cfg.LiquidityBonus
	}
	if p.LiquidityUSD/math.Max(p.MarketCapUSD, 1) > cfg.LiquidityRatioFloor {
		res.RatioBonus = cfg.LiquidityRatioBonus
	}
	if p.Volume.M5 > cfg.VolumeFloor5mUSD {
		res.VolumeBonus = cfg.VolumeBonus
	}
	if res.SniperLevel == models.SniperHigh {
		res.SniperPenalty = cfg.SniperHighPenalty
	}
	if res.BundleRisk > cfg.BundleRiskThreshold {
		res.BundlePenalty = cfg.BundleRiskPenalty
	}

	sum := res.FreshnessBonus + res.LiquidityBonus + res.RatioBonus +
		res.VolumeBonus - res.SniperPenalty - res.BundlePenalty
	res.Score = int(math.Round(clamp(float64(sum), 0, 100)))
	return res
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
