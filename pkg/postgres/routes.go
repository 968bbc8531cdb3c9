package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

// ListRoutes returns every route document in creation order
func (d *DB) ListRoutes(ctx context.Context) ([]model.Route, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT doc, revision
		FROM transport
		ORDER BY length(id), id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		var doc []byte
		var revision string
		if err := rows.Scan(&doc, &revision); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		route, err := decodeRoute(doc, revision)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating routes: %w", err)
	}

	return routes, nil
}

// GetRoute returns nil, nil when the route doesn't exist
func (d *DB) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	var doc []byte
	var revision string
	err := d.pool.QueryRow(ctx, `
		SELECT doc, revision FROM transport WHERE id = $1
	`, id).Scan(&doc, &revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route %s: %w", id, err)
	}

	route, err := decodeRoute(doc, revision)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// SaveRoute inserts a new route (empty revision) or updates one whose stored revision
// still matches. Returns db.ErrConflict when another writer got there first.
func (d *DB) SaveRoute(ctx context.Context, route *model.Route) error {
	next := uuid.New().String()

	stored := *route
	stored.Revision = ""
	doc, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal route %s: %w", route.ID, err)
	}

	var query string
	args := []any{route.ID, string(doc), next}
	if route.Revision == "" {
		query = `
			INSERT INTO transport (id, doc, revision)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
		`
	} else {
		query = `
			UPDATE transport SET doc = $2, revision = $3, updated_at = NOW()
			WHERE id = $1 AND revision = $4
		`
		args = append(args, route.Revision)
	}

	tag, err := d.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save route %s: %w", route.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save route %s: %w", route.ID, db.ErrConflict)
	}

	route.Revision = next
	return nil
}

// DeleteRoute removes a route. Deleting a missing route is a no-op.
func (d *DB) DeleteRoute(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM transport WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route %s: %w", id, err)
	}
	return nil
}

// NextRouteID draws from transport_id_seq so IDs are never reused
func (d *DB) NextRouteID(ctx context.Context) (string, error) {
	var id int64
	if err := d.pool.QueryRow(ctx, `SELECT nextval('transport_id_seq')`).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to allocate route id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func decodeRoute(doc []byte, revision string) (model.Route, error) {
	var route model.Route
	if err := json.Unmarshal(doc, &route); err != nil {
		return model.Route{}, fmt.Errorf("failed to decode route document: %w", err)
	}
	route.Revision = revision
	return route, nil
}
