package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

// GetDateRecord returns nil, nil when no overlays have been recorded for the date
func (d *DB) GetDateRecord(ctx context.Context, date string) (*model.DateRecord, error) {
	var doc []byte
	var revision string
	err := d.pool.QueryRow(ctx, `
		SELECT doc, revision FROM transport_dates WHERE date_key = $1
	`, date).Scan(&doc, &revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get date record %s: %w", date, err)
	}

	var record model.DateRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, fmt.Errorf("failed to decode date record %s: %w", date, err)
	}
	record.Date = date
	record.Revision = revision
	return &record, nil
}

// SaveDateRecord writes the whole record with the same revision check as SaveRoute
func (d *DB) SaveDateRecord(ctx context.Context, record *model.DateRecord) error {
	next := uuid.New().String()

	stored := *record
	stored.Revision = ""
	doc, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal date record %s: %w", record.Date, err)
	}

	var query string
	args := []any{record.Date, string(doc), next}
	if record.Revision == "" {
		query = `
			INSERT INTO transport_dates (date_key, doc, revision)
			VALUES ($1, $2, $3)
			ON CONFLICT (date_key) DO NOTHING
		`
	} else {
		query = `
			UPDATE transport_dates SET doc = $2, revision = $3, updated_at = NOW()
			WHERE date_key = $1 AND revision = $4
		`
		args = append(args, record.Revision)
	}

	tag, err := d.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save date record %s: %w", record.Date, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save date record %s: %w", record.Date, db.ErrConflict)
	}

	record.Revision = next
	return nil
}
