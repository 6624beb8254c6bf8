package models

import (
	"time"
)

// SniperLevel is an ordinal classification of early aggressive buying.
type SniperLevel string

const (
	SniperLow    SniperLevel = "Low"
	SniperMedium SniperLevel = "Medium"
	SniperHigh   SniperLevel = "High"
)

// ScoreResult carries the alpha score for one pair together with the
// individual contributions it was derived from. It lives for one scan
// pass only and is never persisted on its own.
type ScoreResult struct {
	Score int

	FreshnessBonus int
	LiquidityBonus int
	RatioBonus     int
	VolumeBonus    int
	SniperPenalty  int
	BundlePenalty  int

	SniperLevel SniperLevel
	BundleRisk  int
	Trending    bool
}

// Alert is the outbound record built from a pair and its score result.
// Write-once: after handoff to the notifier nothing mutates it.
type Alert struct {
	ID          string
	PairAddress string
	ChainID     string
	Name        string
	Symbol      string
	URL         string

	Score       int
	SniperLevel SniperLevel
	BundleRisk  int
	Trending    bool

	AgeMinutes   int
	LiquidityUSD float64
	MarketCapUSD float64
	Volume5mUSD  float64

	DetectedAt time.Time
	Notified   bool
}
