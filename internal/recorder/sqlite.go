package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TrendSentinel/internal/model"
)

// SQLiteRecorder appends regime decisions and trigger events to a local
// sqlite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (and if needed creates) the database at path and
// runs migrations.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite is not safe for concurrent writers on one connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS regime_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			as_of TEXT NOT NULL,
			state TEXT NOT NULL,
			composite_score REAL NOT NULL,
			conditions_score REAL NOT NULL,
			conditions_level REAL NOT NULL,
			change_1w REAL NOT NULL,
			change_4w REAL NOT NULL,
			score_change_4w REAL NOT NULL,
			trend_score INTEGER NOT NULL,
			max_exposure REAL NOT NULL,
			allow_new_entries INTEGER NOT NULL,
			risk_off_triggered INTEGER NOT NULL,
			conditions_as_of TEXT NOT NULL,
			eligible_count INTEGER NOT NULL,
			triggered_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS trigger_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			as_of TEXT NOT NULL,
			ticker TEXT NOT NULL,
			kind TEXT NOT NULL,
			reference_high REAL NOT NULL,
			reference_price REAL NOT NULL,
			volume_ratio REAL NOT NULL,
			eligible_under_regime INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_regime_log_as_of ON regime_log(as_of)`,
		`CREATE INDEX IF NOT EXISTS idx_trigger_events_ticker ON trigger_events(ticker, as_of)`,
	}
	for _, stmt := range schema {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// RecordRun writes one regime_log row and one trigger_events row per fired
// trigger, in a single transaction.
func (r *SQLiteRecorder) RecordRun(report *model.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	asOf := report.AsOf.Format("2006-01-02")
	regime := report.Regime

	_, err = tx.Exec(
		`INSERT INTO regime_log (
			timestamp, as_of, state, composite_score, conditions_score,
			conditions_level, change_1w, change_4w, score_change_4w,
			trend_score, max_exposure, allow_new_entries, risk_off_triggered,
			conditions_as_of, eligible_count, triggered_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		now, asOf, string(regime.State), regime.CompositeScore, regime.ConditionsScore,
		regime.ConditionsLevel, regime.Change1W, regime.Change4W, regime.ScoreChange4W,
		regime.TrendScore, regime.MaxExposure, boolToInt(regime.AllowNewEntries),
		boolToInt(regime.RiskOffTriggered), regime.ConditionsAsOf.Format("2006-01-02"),
		len(report.EligibleTickers()), len(report.TriggeredTickers()),
	)
	if err != nil {
		return fmt.Errorf("insert regime_log: %w", err)
	}

	for _, ev := range report.Events {
		_, err = tx.Exec(
			`INSERT INTO trigger_events (
				timestamp, as_of, ticker, kind, reference_high,
				reference_price, volume_ratio, eligible_under_regime
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			now, asOf, ev.Ticker, string(ev.Kind), ev.ReferenceHigh,
			ev.ReferencePrice, ev.ReferenceVolumeRatio, boolToInt(ev.EligibleUnderRegime),
		)
		if err != nil {
			return fmt.Errorf("insert trigger_events: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
