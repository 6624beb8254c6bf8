// Package filter decides which fetched pairs are eligible for scoring.
package filter

import (
	"strings"
	"time"

	"alphascan/internal/models"
)

// Policy is a set of independent thresholds. The zero value of any field
// means "no constraint", so an empty Policy admits every pair with a
// known creation time.
type Policy struct {
	MinLiquidityUSD float64
	MinMarketCapUSD float64
	MaxMarketCapUSD float64
	MinAgeMinutes   int
	MaxAgeMinutes   int
	MinTx24hBuys    int
	MinTx24hSells   int
	MinTx5mTotal    int

	// KeywordAllowlist, when non-empty, requires a case-insensitive
	// substring match of any entry against name+symbol.
	KeywordAllowlist []string
}

// DefaultPolicy admits pairs younger than 72h with a real two-sided
// 24h market and at least some 5-minute activity.
func DefaultPolicy() Policy {
	return Policy{
		MaxAgeMinutes: 72 * 60,
		MinTx24hBuys:  50,
		MinTx24hSells: 30,
		MinTx5mTotal:  10,
	}
}

// Eligible evaluates the policy against a pair at the given instant.
// Pure and total: absent numeric fields on the pair behave as zero, so
// a pair missing liquidity data fails a liquidity floor rather than
// crashing the check. A pair with unknown CreatedAt is never eligible
// because its age risk cannot be bounded.
func Eligible(p models.Pair, policy Policy, now time.Time) bool {
	if p.CreatedAt.IsZero() {
		return false
	}
	ageMinutes := now.Sub(p.CreatedAt).Minutes()

	if policy.MinAgeMinutes > 0 && ageMinutes < float64(policy.MinAgeMinutes) {
		return false
	}
	if policy.MaxAgeMinutes > 0 && ageMinutes > float64(policy.MaxAgeMinutes) {
		return false
	}
	if policy.MinLiquidityUSD > 0 && p.LiquidityUSD < policy.MinLiquidityUSD {
		return false
	}
	if policy.MinMarketCapUSD > 0 && p.MarketCapUSD < policy.MinMarketCapUSD {
		return false
	}
	if policy.MaxMarketCapUSD > 0 && p.MarketCapUSD > policy.MaxMarketCapUSD {
		return false
	}
	if policy.MinTx24hBuys > 0 && p.Txns.H24.Buys < policy.MinTx24hBuys {
		return false
	}
	if policy.MinTx24hSells > 0 && p.Txns.H24.Sells < policy.MinTx24hSells {
		return false
	}
	if policy.MinTx5mTotal > 0 && p.Txns.M5.Total() < policy.MinTx5mTotal {
		return false
	}
	if len(policy.KeywordAllowlist) > 0 && !matchesAllowlist(p, policy.KeywordAllowlist) {
		return false
	}
	return true
}

func matchesAllowlist(p models.Pair, allowlist []string) bool {
	haystack := strings.ToLower(p.Name + " " + p.Symbol)
	for _, kw := range allowlist {
		kw = strings.TrimSpace(strings.ToLower(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
