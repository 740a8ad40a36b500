package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// Settings are stored as key/value rows so new fields never need a migration.

const (
	settingPaperTrading  = "paper_trading"
	settingDefaultStake  = "default_stake"
	settingBankroll      = "bankroll"
	settingKellyFraction = "kelly_fraction"
	settingMinEdgePct    = "min_edge_pct"
)

// GetSettings loads persisted settings, falling back to supplied defaults
// for any key that has never been written
func (s *Store) GetSettings(ctx context.Context, defaults models.Settings) (*models.Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := defaults
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}

		switch key {
		case settingPaperTrading:
			if b, err := strconv.ParseBool(value); err == nil {
				settings.PaperTrading = b
			}
		case settingDefaultStake:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				settings.DefaultStake = f
			}
		case settingBankroll:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				settings.Bankroll = f
			}
		case settingKellyFraction:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				settings.KellyFraction = f
			}
		case settingMinEdgePct:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				settings.MinEdgePct = f
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// UpdateSettings persists all settings fields
func (s *Store) UpdateSettings(ctx context.Context, settings models.Settings) error {
	pairs := map[string]string{
		settingPaperTrading:  strconv.FormatBool(settings.PaperTrading),
		settingDefaultStake:  strconv.FormatFloat(settings.DefaultStake, 'f', -1, 64),
		settingBankroll:      strconv.FormatFloat(settings.Bankroll, 'f', -1, 64),
		settingKellyFraction: strconv.FormatFloat(settings.KellyFraction, 'f', -1, 64),
		settingMinEdgePct:    strconv.FormatFloat(settings.MinEdgePct, 'f', -1, 64),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range pairs {
		_, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value`), key, value)
		if err != nil {
			return fmt.Errorf("failed to write setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}
