package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alphascan/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(100, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testAlert(pairAddress string, score int, detectedAt time.Time) *models.Alert {
	return &models.Alert{
		PairAddress:  pairAddress,
		ChainID:      "solana",
		Name:         "Test Token",
		Symbol:       "TEST",
		URL:          "https://dexscreener.com/solana/" + pairAddress,
		Score:        score,
		SniperLevel:  models.SniperMedium,
		BundleRisk:   76,
		Trending:     true,
		AgeMinutes:   3,
		LiquidityUSD: 12000,
		MarketCapUSD: 50000,
		Volume5mUSD:  11000,
		DetectedAt:   detectedAt,
	}
}

func TestStorage_AddAlertAssignsID(t *testing.T) {
	s := newTestStorage(t)

	a := testAlert("pair-1", 60, time.Now())
	require.Empty(t, a.ID)
	require.NoError(t, s.AddAlert(a))
	require.NotEmpty(t, a.ID, "AddAlert must assign a UUID")
}

func TestStorage_AddAlertRejectsEmptyPair(t *testing.T) {
	s := newTestStorage(t)

	a := testAlert("", 60, time.Now())
	require.Error(t, s.AddAlert(a))
}

func TestStorage_TopAlerts(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()

	require.NoError(t, s.AddAlert(testAlert("pair-low", 40, now)))
	require.NoError(t, s.AddAlert(testAlert("pair-high", 90, now)))
	require.NoError(t, s.AddAlert(testAlert("pair-mid", 65, now)))

	top, err := s.TopAlerts(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "pair-high", top[0].PairAddress)
	require.Equal(t, "pair-mid", top[1].PairAddress)
	require.Equal(t, models.SniperMedium, top[0].SniperLevel)
	require.True(t, top[0].Trending)
	require.WithinDuration(t, now, top[0].DetectedAt, time.Millisecond)
}

func TestStorage_MarkNotified(t *testing.T) {
	s := newTestStorage(t)

	a := testAlert("pair-1", 60, time.Now())
	require.NoError(t, s.AddAlert(a))
	require.NoError(t, s.MarkNotified(a.ID))

	top, err := s.TopAlerts(1)
	require.NoError(t, err)
	require.True(t, top[0].Notified)

	require.Error(t, s.MarkNotified("missing-id"))
}

func TestStorage_SeenPairIDs(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()

	require.NoError(t, s.AddAlert(testAlert("pair-old", 50, now.Add(-48*time.Hour))))
	require.NoError(t, s.AddAlert(testAlert("pair-new", 70, now)))
	// Duplicate address must collapse to one entry.
	require.NoError(t, s.AddAlert(testAlert("pair-new", 75, now.Add(-time.Hour))))

	ids, err := s.SeenPairIDs(0)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"pair-old", "pair-new"}, ids)

	recent, err := s.SeenPairIDs(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"pair-new"}, recent)
}

func TestStorage_RotateAlerts(t *testing.T) {
	s, err := New(2, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	now := time.Now()
	require.NoError(t, s.AddAlert(testAlert("pair-1", 50, now.Add(-3*time.Minute))))
	require.NoError(t, s.AddAlert(testAlert("pair-2", 60, now.Add(-2*time.Minute))))
	require.NoError(t, s.AddAlert(testAlert("pair-3", 70, now.Add(-time.Minute))))

	require.NoError(t, s.RotateAlerts())

	ids, err := s.SeenPairIDs(0)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"pair-2", "pair-3"}, ids)
}
