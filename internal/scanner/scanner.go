// Package scanner runs the poll → filter → dedupe → score → notify loop.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alphascan/internal/dedup"
	"alphascan/internal/filter"
	"alphascan/internal/logger"
	"alphascan/internal/models"
	"alphascan/internal/scoring"
)

// Fetcher retrieves the current feed snapshot.
type Fetcher interface {
	Search(ctx context.Context, query string) ([]models.Pair, error)
}

// Notifier delivers alerts and service notices.
type Notifier interface {
	Notify(ctx context.Context, alert models.Alert) error
	SendError(ctx context.Context, scanErr error) error
	SendRecovery(ctx context.Context, failureCount int) error
}

// AlertStore persists alert history.
type AlertStore interface {
	AddAlert(alert *models.Alert) error
	MarkNotified(alertID string) error
	RotateAlerts() error
}

// Config tunes the scan loop.
type Config struct {
	Interval time.Duration
	Query    string
	MinScore int
}

// Scanner owns one pipeline instance. Passes run inline in the Run loop
// goroutine, so two passes can never overlap regardless of how slow the
// upstream is; ticks that fire during a long pass are simply dropped.
type Scanner struct {
	fetcher  Fetcher
	dedup    dedup.Store
	store    AlertStore
	notifier Notifier
	engine   *scoring.Engine
	policy   filter.Policy
	config   Config

	consecutiveFailures int
	now                 func() time.Time
}

// New creates a scanner. store and notifier may be nil (history or
// delivery disabled); fetcher, dedupStore, and engine are required.
func New(fetcher Fetcher, dedupStore dedup.Store, store AlertStore, notifier Notifier,
	engine *scoring.Engine, policy filter.Policy, config Config) *Scanner {
	return &Scanner{
		fetcher:  fetcher,
		dedup:    dedupStore,
		store:    store,
		notifier: notifier,
		engine:   engine,
		policy:   policy,
		config:   config,
		now:      time.Now,
	}
}

// Run executes an immediate first pass and then one pass per interval
// tick until ctx is cancelled. It returns once the in-flight pass has
// finished, which is the clean-shutdown guarantee the caller waits on.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	logger.Debug("Running initial scan pass")
	s.RunPass(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scanner stopped")
			return
		case <-ticker.C:
			logger.Debug("Starting scheduled scan pass")
			s.RunPass(ctx)
			if s.store != nil {
				if err := s.store.RotateAlerts(); err != nil {
					logger.Warn("Failed to rotate alerts: %v", err)
				}
			}
		}
	}
}

// RunPass executes one full pass. A fetch failure degrades to an empty
// pass; per-pair failures are isolated. Nothing here ever stops the loop.
func (s *Scanner) RunPass(ctx context.Context) {
	startTime := s.now()

	pairs, err := s.fetcher.Search(ctx, s.config.Query)
	s.trackFetchResult(ctx, err)
	if err != nil {
		logger.Error("Fetch failed, skipping pass: %v", err)
		return
	}
	logger.Info("Fetched %d pairs for query %q", len(pairs), s.config.Query)

	alerted := 0
	for i := range pairs {
		if ctx.Err() != nil {
			logger.Info("Pass abandoned after %d/%d pairs: %v", i, len(pairs), ctx.Err())
			return
		}
		sent, err := s.processPair(ctx, pairs[i])
		if err != nil {
			logger.Warn("Skipping pair %s: %v", pairs[i].PairAddress, err)
			continue
		}
		if sent {
			alerted++
		}
	}

	logger.Info("Scan pass completed in %v: %d pairs, %d alerted",
		s.now().Sub(startTime), len(pairs), alerted)
}

// processPair runs one pair through filter, dedup, scoring, and delivery.
// The seen mark is written before the notify attempt: a failed delivery
// drops that alert instead of duplicating it later.
func (s *Scanner) processPair(ctx context.Context, pair models.Pair) (bool, error) {
	if err := pair.Validate(); err != nil {
		return false, fmt.Errorf("malformed pair: %w", err)
	}

	now := s.now()
	if !filter.Eligible(pair, s.policy, now) {
		return false, nil
	}

	seen, err := s.dedup.Seen(ctx, pair.PairAddress)
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if seen {
		return false, nil
	}
	if err := s.dedup.MarkSeen(ctx, pair.PairAddress); err != nil {
		return false, fmt.Errorf("dedup mark: %w", err)
	}

	result := s.engine.Score(pair, now)
	logger.Debug("Pair %s (%s): score=%d sniper=%s bundle=%d%% trending=%v",
		pair.PairAddress, pair.Symbol, result.Score, result.SniperLevel, result.BundleRisk, result.Trending)

	if result.Score < s.config.MinScore {
		return false, nil
	}

	alert := buildAlert(pair, result, now)

	if s.store != nil {
		if err := s.store.AddAlert(&alert); err != nil {
			logger.Warn("Failed to persist alert for %s: %v", pair.PairAddress, err)
		}
	}

	if s.notifier == nil {
		logger.Debug("Alert for %s suppressed: delivery disabled", pair.PairAddress)
		return false, nil
	}
	if err := s.notifier.Notify(ctx, alert); err != nil {
		// DeliveryError: logged and swallowed, the seen mark stands.
		logger.Error("Failed to deliver alert for %s: %v", pair.PairAddress, err)
		return false, nil
	}
	if s.store != nil && alert.ID != "" {
		if err := s.store.MarkNotified(alert.ID); err != nil {
			logger.Warn("Failed to mark alert %s notified: %v", alert.ID, err)
		}
	}
	return true, nil
}

// trackFetchResult maintains the consecutive-failure counter and sends
// the error/recovery notices around it.
func (s *Scanner) trackFetchResult(ctx context.Context, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Shutdown aborted the fetch; not a scan failure, no notice.
			return
		}
		s.consecutiveFailures++
		if s.consecutiveFailures == 1 && s.notifier != nil {
			if sendErr := s.notifier.SendError(ctx, err); sendErr != nil {
				logger.Warn("Failed to send error notice: %v", sendErr)
			}
		}
		return
	}
	if s.consecutiveFailures > 0 && s.notifier != nil {
		if sendErr := s.notifier.SendRecovery(ctx, s.consecutiveFailures); sendErr != nil {
			logger.Warn("Failed to send recovery notice: %v", sendErr)
		}
	}
	s.consecutiveFailures = 0
}

func buildAlert(pair models.Pair, result models.ScoreResult, now time.Time) models.Alert {
	return models.Alert{
		PairAddress:  pair.PairAddress,
		ChainID:      pair.ChainID,
		Name:         pair.Name,
		Symbol:       pair.Symbol,
		URL:          pair.URL,
		Score:        result.Score,
		SniperLevel:  result.SniperLevel,
		BundleRisk:   result.BundleRisk,
		Trending:     result.Trending,
		AgeMinutes:   pair.AgeMinutes(now),
		LiquidityUSD: pair.LiquidityUSD,
		MarketCapUSD: pair.MarketCapUSD,
		Volume5mUSD:  pair.Volume.M5,
		DetectedAt:   now,
	}
}
