package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// ListRiders reads rider profiles from the rider table
func (d *DB) ListRiders(ctx context.Context) ([]model.Rider, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, COALESCE(phone, ''), COALESCE(city, ''), COALESCE(transport, ''), arrival_days, has_caregiver
		FROM rider
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query riders: %w", err)
	}
	defer rows.Close()

	var riders []model.Rider
	for rows.Next() {
		var r model.Rider
		var days []string
		if err := rows.Scan(&r.ID, &r.Name, &r.Phone, &r.City, &r.Transport, &days, &r.HasCaregiver); err != nil {
			return nil, fmt.Errorf("failed to scan rider: %w", err)
		}
		for _, day := range days {
			r.ArrivalDays = append(r.ArrivalDays, model.Weekday(day))
		}
		riders = append(riders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating riders: %w", err)
	}

	return riders, nil
}
