// Package storage provides SQLite-backed persistence for alert history.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"alphascan/internal/models"
)

// Storage wraps a SQLite database holding the alert log. The alert log
// doubles as the seen-pair memory across restarts: pair addresses that
// alerted before are reloaded into the dedup store at boot.
type Storage struct {
	db        *sql.DB
	maxAlerts int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/alphascan/data.db.
func New(maxAlerts int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "alphascan", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxAlerts: maxAlerts}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id            TEXT PRIMARY KEY,
			pair_address  TEXT NOT NULL,
			chain_id      TEXT NOT NULL,
			name          TEXT,
			symbol        TEXT,
			url           TEXT,
			score         INTEGER NOT NULL,
			sniper_level  TEXT NOT NULL,
			bundle_risk   INTEGER NOT NULL,
			trending      INTEGER NOT NULL DEFAULT 0,
			age_minutes   INTEGER NOT NULL,
			liquidity_usd REAL NOT NULL,
			market_cap    REAL NOT NULL,
			volume_5m     REAL NOT NULL,
			detected_at   INTEGER NOT NULL,
			notified      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_pair ON alerts(pair_address)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_detected_at ON alerts(detected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_score ON alerts(score DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddAlert persists an alert. A missing ID is assigned a fresh UUID and
// written back to the record.
func (s *Storage) AddAlert(alert *models.Alert) error {
	if alert.PairAddress == "" {
		return fmt.Errorf("alert pair address must not be empty")
	}
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}

	query, args, err := sq.Insert("alerts").
		Columns(alertCols...).
		Values(alert.ID, alert.PairAddress, alert.ChainID, alert.Name, alert.Symbol, alert.URL,
			alert.Score, string(alert.SniperLevel), alert.BundleRisk, boolToInt(alert.Trending),
			alert.AgeMinutes, alert.LiquidityUSD, alert.MarketCapUSD, alert.Volume5mUSD,
			alert.DetectedAt.UnixNano(), boolToInt(alert.Notified)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// MarkNotified flags a stored alert as delivered.
func (s *Storage) MarkNotified(alertID string) error {
	query, args, err := sq.Update("alerts").
		Set("notified", 1).
		Where(sq.Eq{"id": alertID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notified: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("alert not found: %s", alertID)
	}
	return nil
}

// TopAlerts returns up to k stored alerts ordered by score descending.
func (s *Storage) TopAlerts(k int) ([]models.Alert, error) {
	query, args, err := sq.Select(alertCols...).
		From("alerts").
		OrderBy("score DESC", "detected_at DESC").
		Limit(uint64(k)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// SeenPairIDs returns the distinct pair addresses that alerted within the
// given window (0 = ever), newest first, used to seed dedup at boot.
func (s *Storage) SeenPairIDs(window time.Duration) ([]string, error) {
	builder := sq.Select("pair_address").
		From("alerts").
		GroupBy("pair_address").
		OrderBy("MAX(detected_at) DESC")
	if window > 0 {
		cutoff := time.Now().Add(-window).UnixNano()
		builder = builder.Where(sq.GtOrEq{"detected_at": cutoff})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen pairs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan pair address: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RotateAlerts keeps at most maxAlerts newest alerts by detected_at.
func (s *Storage) RotateAlerts() error {
	_, err := s.db.Exec(`
		DELETE FROM alerts WHERE id NOT IN (
			SELECT id FROM alerts ORDER BY detected_at DESC LIMIT ?
		)`, s.maxAlerts)
	if err != nil {
		return fmt.Errorf("failed to rotate alerts: %w", err)
	}
	return nil
}

var alertCols = []string{
	"id", "pair_address", "chain_id", "name", "symbol", "url",
	"score", "sniper_level", "bundle_risk", "trending", "age_minutes",
	"liquidity_usd", "market_cap", "volume_5m", "detected_at", "notified",
}

func scanAlert(scan func(...any) error) (*models.Alert, error) {
	var a models.Alert
	var sniperLevel string
	var trending, notified int
	var detectedAtNano int64
	err := scan(
		&a.ID, &a.PairAddress, &a.ChainID, &a.Name, &a.Symbol, &a.URL,
		&a.Score, &sniperLevel, &a.BundleRisk, &trending, &a.AgeMinutes,
		&a.LiquidityUSD, &a.MarketCapUSD, &a.Volume5mUSD,
		&detectedAtNano, &notified,
	)
	if err != nil {
		return nil, err
	}
	a.SniperLevel = models.SniperLevel(sniperLevel)
	a.Trending = trending != 0
	a.Notified = notified != 0
	a.DetectedAt = time.Unix(0, detectedAtNano)
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
