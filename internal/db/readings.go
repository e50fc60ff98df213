package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"heat-alert-service/internal/models"
)

// InsertReading appends a reading.
func (d *DB) InsertReading(ctx context.Context, r models.Reading) error {
	query := `
        INSERT INTO readings (id, temperature, moisture, observed_at, received_at)
        VALUES ($1, $2, $3, $4, $5)`
	_, err := d.Pool.Exec(ctx, query, r.ID, r.Temperature, r.Moisture, r.ObservedAt, r.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}
	return nil
}

// RecentReadings returns up to limit readings, newest first.
func (d *DB) RecentReadings(ctx context.Context, limit int) ([]models.Reading, error) {
	query := `
        SELECT id, temperature, moisture, observed_at, received_at
        FROM readings
        ORDER BY observed_at DESC, received_at DESC
        LIMIT $1`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	readings := make([]models.Reading, 0, limit)
	for rows.Next() {
		var r models.Reading
		var id pgtype.UUID
		if err := rows.Scan(&id, &r.Temperature, &r.Moisture, &r.ObservedAt, &r.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		r.ID = uuid.UUID(id.Bytes)
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read readings: %w", err)
	}
	return readings, nil
}

// ClearReadings deletes every stored reading and returns the count.
func (d *DB) ClearReadings(ctx context.Context) (int64, error) {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM readings`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear readings: %w", err)
	}
	return tag.RowsAffected(), nil
}
