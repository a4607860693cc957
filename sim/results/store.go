package results

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/urban-sim/urban-sim/sim"
)

// SQLiteStore persists runs, per-year event counts and market statistics.
// One store records one run; the run row is written by Open.
type SQLiteStore struct {
	conn  *sqlx.DB
	runID string
}

// RunInfo describes a run for the runs table.
type RunInfo struct {
	Seed      int64
	StartYear int
	EndYear   int
	Scenario  string
}

// EventCountRow is one row of the event_counts table.
type EventCountRow struct {
	RunID     string `db:"run_id"`
	Year      int    `db:"year"`
	EventType string `db:"event_type"`
	Attempted int    `db:"attempted"`
	Succeeded int    `db:"succeeded"`
}

// MarketRow is one row of the market_stats table.
type MarketRow struct {
	RunID        string  `db:"run_id"`
	Year         int     `db:"year"`
	Region       int     `db:"region"`
	DwellingType string  `db:"dwelling_type"`
	Total        int     `db:"total"`
	Vacant       int     `db:"vacant"`
	VacancyRate  float64 `db:"vacancy_rate"`
	ChangeRate   float64 `db:"change_rate"`
	AveragePrice float64 `db:"average_price"`
}

// RunRow is one row of the runs table.
type RunRow struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	StartYear int    `db:"start_year"`
	EndYear   int    `db:"end_year"`
	Scenario  string `db:"scenario"`
	StartedAt string `db:"started_at"`
	Years     int    `db:"years_finished"`
}

// Open opens or creates a SQLite database at path and registers a new run.
// Use ":memory:" for a throwaway store.
func Open(path string, info RunInfo) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	// an in-memory database lives and dies with its connection
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn, runID: uuid.NewString()}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate results db: %w", err)
	}
	_, err = conn.Exec(`INSERT INTO runs (id, seed, start_year, end_year, scenario, started_at, years_finished)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		s.runID, info.Seed, info.StartYear, info.EndYear, info.Scenario, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		start_year INTEGER NOT NULL,
		end_year INTEGER NOT NULL,
		scenario TEXT NOT NULL,
		started_at TEXT NOT NULL,
		years_finished INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS event_counts (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		attempted INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		PRIMARY KEY (run_id, year, event_type)
	);

	CREATE TABLE IF NOT EXISTS market_stats (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		region INTEGER NOT NULL,
		dwelling_type TEXT NOT NULL,
		total INTEGER NOT NULL,
		vacant INTEGER NOT NULL,
		vacancy_rate REAL NOT NULL,
		change_rate REAL NOT NULL,
		average_price REAL NOT NULL,
		PRIMARY KEY (run_id, year, region, dwelling_type)
	);

	CREATE TABLE IF NOT EXISTS quality_shares (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		level INTEGER NOT NULL,
		share REAL NOT NULL,
		PRIMARY KEY (run_id, year, level)
	);

	CREATE INDEX IF NOT EXISTS idx_event_counts_year ON event_counts(run_id, year);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RunID returns the id of the run this store records.
func (s *SQLiteStore) RunID() string { return s.runID }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// RecordYear writes the event counts of a year and bumps the run's
// finished-year counter in one transaction.
func (s *SQLiteStore) RecordYear(summary sim.YearSummary) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO event_counts (run_id, year, event_type, attempted, succeeded)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range summary.Counts {
		if _, err := stmt.Exec(s.runID, summary.Year, string(c.Type), c.Attempted, c.Succeeded); err != nil {
			return fmt.Errorf("insert %s count: %w", c.Type, err)
		}
	}
	if _, err := tx.Exec(`UPDATE runs SET years_finished = years_finished + 1 WHERE id = ?`, s.runID); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordMarket writes the submarket statistics and quality shares of a year.
func (s *SQLiteStore) RecordMarket(r MarketReport) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, st := range r.Stats {
		row := MarketRow{
			RunID: s.runID, Year: r.Year, Region: st.Region, DwellingType: st.Type.String(),
			Total: st.Total, Vacant: st.Vacant, VacancyRate: st.VacancyRate,
			ChangeRate: st.ChangeRate, AveragePrice: st.AveragePrice,
		}
		_, err := tx.NamedExec(`INSERT INTO market_stats
			(run_id, year, region, dwelling_type, total, vacant, vacancy_rate, change_rate, average_price)
			VALUES (:run_id, :year, :region, :dwelling_type, :total, :vacant, :vacancy_rate, :change_rate, :average_price)`, row)
		if err != nil {
			return fmt.Errorf("insert market stats: %w", err)
		}
	}
	for level := 1; level < len(r.QualityShares); level++ {
		if _, err := tx.Exec(`INSERT INTO quality_shares (run_id, year, level, share) VALUES (?, ?, ?, ?)`,
			s.runID, r.Year, level, r.QualityShares[level]); err != nil {
			return fmt.Errorf("insert quality share: %w", err)
		}
	}
	return tx.Commit()
}

// Run loads the run row.
func (s *SQLiteStore) Run() (RunRow, error) {
	var row RunRow
	err := s.conn.Get(&row, `SELECT id, seed, start_year, end_year, scenario, started_at, years_finished
		FROM runs WHERE id = ?`, s.runID)
	return row, err
}

// EventCounts loads the event counts of this run ordered by year and type.
func (s *SQLiteStore) EventCounts() ([]EventCountRow, error) {
	var rows []EventCountRow
	err := s.conn.Select(&rows, `SELECT run_id, year, event_type, attempted, succeeded
		FROM event_counts WHERE run_id = ? ORDER BY year, event_type`, s.runID)
	return rows, err
}

// MarketStats loads the market rows of one year ordered by region and type.
func (s *SQLiteStore) MarketStats(year int) ([]MarketRow, error) {
	var rows []MarketRow
	err := s.conn.Select(&rows, `SELECT run_id, year, region, dwelling_type, total, vacant,
		vacancy_rate, change_rate, average_price
		FROM market_stats WHERE run_id = ? AND year = ? ORDER BY region, dwelling_type`, s.runID, year)
	return rows, err
}

// QualityShares loads the shares of one year indexed by level (index 0 unused).
func (s *SQLiteStore) QualityShares(year int) ([]float64, error) {
	var rows []struct {
		Level int     `db:"level"`
		Share float64 `db:"share"`
	}
	err := s.conn.Select(&rows, `SELECT level, share FROM quality_shares
		WHERE run_id = ? AND year = ? ORDER BY level`, s.runID, year)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows)+1)
	for _, r := range rows {
		if r.Level < len(out) {
			out[r.Level] = r.Share
		}
	}
	return out, nil
}
