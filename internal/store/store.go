// Package store implements the durable bet-tracking and odds-history store.
// It runs on SQLite (the default, a single file at DB_PATH) or Postgres
// (when DATABASE_URL is set) behind the same query surface.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store wraps the SQL database with dialect-aware helpers
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and ensures the schema exists.
// A non-empty postgresURL selects Postgres; otherwise SQLite at sqlitePath.
func Open(sqlitePath, postgresURL string) (*Store, error) {
	driver := DriverSQLite
	dsn := sqlitePath

	if postgresURL != "" {
		driver = DriverPostgres
		dsn = postgresURL
	} else {
		if dir := filepath.Dir(sqlitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the active driver name
func (s *Store) Driver() string {
	return s.driver
}

// rebind converts ? placeholders to $N for Postgres. Queries are written
// in SQLite style and rebound at execution.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// insertReturningID inserts a row and returns its generated ID. Postgres
// needs RETURNING; SQLite uses LastInsertId.
func (s *Store) insertReturningID(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		err := tx.QueryRowContext(ctx, s.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) initSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bets (
			id %s,
			external_ref TEXT NOT NULL,
			sport_key TEXT NOT NULL,
			event_id TEXT NOT NULL,
			market_key TEXT NOT NULL,
			book_key TEXT NOT NULL,
			outcome_name TEXT NOT NULL,
			price INTEGER NOT NULL,
			point REAL,
			stake REAL NOT NULL,
			paper_trade BOOLEAN NOT NULL,
			opportunity_id INTEGER,
			notes TEXT NOT NULL DEFAULT '',
			result TEXT NOT NULL DEFAULT 'pending',
			profit_loss REAL,
			steam_move BOOLEAN NOT NULL DEFAULT false,
			placed_at TIMESTAMP NOT NULL,
			settled_at TIMESTAMP
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS line_movements (
			id %s,
			event_id TEXT NOT NULL,
			sport_key TEXT NOT NULL,
			market_key TEXT NOT NULL,
			book_key TEXT NOT NULL,
			outcome_name TEXT NOT NULL,
			price INTEGER NOT NULL,
			point REAL,
			recorded_at TIMESTAMP NOT NULL
		)`, serial),
		`CREATE INDEX IF NOT EXISTS idx_line_movements_outcome
			ON line_movements (event_id, market_key, book_key, outcome_name, recorded_at)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS opportunities (
			id %s,
			opportunity_type TEXT NOT NULL,
			sport_key TEXT NOT NULL,
			event_id TEXT NOT NULL,
			market_key TEXT NOT NULL,
			edge_pct REAL NOT NULL,
			fair_price INTEGER,
			sharp_confidence REAL,
			detected_at TIMESTAMP NOT NULL,
			data_age_seconds INTEGER NOT NULL
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS opportunity_legs (
			id %s,
			opportunity_id INTEGER NOT NULL,
			book_key TEXT NOT NULL,
			outcome_name TEXT NOT NULL,
			price INTEGER NOT NULL,
			point REAL,
			stake REAL,
			leg_edge_pct REAL
		)`, serial),
		`CREATE TABLE IF NOT EXISTS closing_lines (
			event_id TEXT NOT NULL,
			market_key TEXT NOT NULL,
			book_key TEXT NOT NULL,
			outcome_name TEXT NOT NULL,
			closing_price INTEGER NOT NULL,
			point REAL,
			closed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (event_id, market_key, book_key, outcome_name)
		)`,
		`CREATE TABLE IF NOT EXISTS bet_performance (
			bet_id INTEGER PRIMARY KEY,
			closing_line_price INTEGER NOT NULL,
			clv_cents REAL NOT NULL,
			hold_time_seconds INTEGER NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS game_results (
			id %s,
			event_id TEXT NOT NULL UNIQUE,
			sport_key TEXT NOT NULL,
			home_team TEXT NOT NULL,
			away_team TEXT NOT NULL,
			home_score INTEGER NOT NULL,
			away_score INTEGER NOT NULL,
			played_at TIMESTAMP NOT NULL
		)`, serial),
		`CREATE TABLE IF NOT EXISTS team_ratings (
			sport_key TEXT NOT NULL,
			team TEXT NOT NULL,
			rating REAL NOT NULL,
			games INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (sport_key, team)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return nil
}
