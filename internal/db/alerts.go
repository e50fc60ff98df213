package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"heat-alert-service/internal/models"
)

// CreateAlert records a newly authorized dispatch.
func (d *DB) CreateAlert(ctx context.Context, a models.AlertRecord) error {
	query := `
        INSERT INTO alert_dispatches (id, ordinal, temperature, status, message, last_error, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := d.Pool.Exec(ctx, query,
		a.ID, a.Ordinal, a.Temperature, a.Status, a.Message, a.Error, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert record: %w", err)
	}
	return nil
}

// UpdateAlertStatus sets the outcome of a dispatch.
func (d *DB) UpdateAlertStatus(ctx context.Context, id uuid.UUID, status, message, lastError string) error {
	query := `
        UPDATE alert_dispatches
        SET status = $1, message = $2, last_error = $3, updated_at = $4
        WHERE id = $5`
	result, err := d.Pool.Exec(ctx, query, status, message, lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no alert record updated for id %s", id)
	}
	return nil
}

// RecentAlerts returns up to limit dispatch records, newest first.
func (d *DB) RecentAlerts(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	rows, err := d.Pool.Query(ctx, `
        SELECT id, ordinal, temperature, status, message, last_error, created_at, updated_at
        FROM alert_dispatches
        ORDER BY created_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert records: %w", err)
	}
	defer rows.Close()

	records := make([]models.AlertRecord, 0, limit)
	for rows.Next() {
		var a models.AlertRecord
		var id pgtype.UUID
		err := rows.Scan(&id, &a.Ordinal, &a.Temperature, &a.Status, &a.Message, &a.Error, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert record: %w", err)
		}
		a.ID = uuid.UUID(id.Bytes)
		records = append(records, a)
	}
	return records, rows.Err()
}
