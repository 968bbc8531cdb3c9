package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

// ManifestStore defines the database operations needed to build daily passenger lists
type ManifestStore interface {
	db.RouteStore
	db.DateRecordStore
}

// RouteDay is who actually rides a route on one date
type RouteDay struct {
	RouteID        string            `json:"routeId"`
	Type           model.RouteType   `json:"type"`
	Date           string            `json:"date"`
	Operating      bool              `json:"operating"`
	Passengers     []model.Passenger `json:"passengers"`
	SeatsUsed      int               `json:"seatsUsed"`
	SeatsAvailable int               `json:"seatsAvailable"`
}

// EffectivePassengers applies the date's overlays to a route's regular roster.
// A route that doesn't run on the date has no passengers and no free seats.
func EffectivePassengers(ctx context.Context, store ManifestStore, logger *zap.Logger, opts Options, routeID, date string) (*RouteDay, error) {
	weekday, err := weekdayOf(date)
	if err != nil {
		return nil, err
	}

	route, err := getRoute(ctx, store, routeID)
	if err != nil {
		return nil, err
	}

	record, err := store.GetDateRecord(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get date record: %w", err)
	}

	day, err := buildRouteDay(*route, record, date, weekday, opts.capacities())
	if err != nil {
		return nil, err
	}

	logger.Debug("Computed effective passengers",
		zap.String("route_id", routeID),
		zap.String("date", date),
		zap.Int("passengers", len(day.Passengers)),
		zap.Int("seats_available", day.SeatsAvailable))

	return day, nil
}

// DailyManifest lists every route operating on the date with its effective passengers.
// Closure dates produce an empty manifest.
func DailyManifest(ctx context.Context, store ManifestStore, logger *zap.Logger, opts Options, date string) ([]RouteDay, error) {
	weekday, err := weekdayOf(date)
	if err != nil {
		return nil, err
	}

	manifest := make([]RouteDay, 0)

	closed, err := isClosed(date, opts.Closures)
	if err != nil {
		return nil, err
	}
	if closed {
		logger.Info("Centre closed, empty manifest", zap.String("date", date))
		return manifest, nil
	}

	routes, err := store.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	record, err := store.GetDateRecord(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get date record: %w", err)
	}

	for _, route := range routes {
		if !route.RunsOn(weekday) {
			continue
		}
		day, err := buildRouteDay(route, record, date, weekday, opts.capacities())
		if err != nil {
			return nil, fmt.Errorf("failed to build manifest for route %s: %w", route.ID, err)
		}
		manifest = append(manifest, *day)
	}

	logger.Info("Built daily manifest", zap.String("date", date), zap.Int("routes", len(manifest)))
	return manifest, nil
}

// weekdayOf parses the date and returns its work-week day, or "" on Friday and Saturday
func weekdayOf(date string) (model.Weekday, error) {
	t, err := model.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("%w: %v", allocator.ErrInvalidDate, err)
	}
	weekday, _ := model.WeekdayOf(t)
	return weekday, nil
}

func buildRouteDay(route model.Route, record *model.DateRecord, date string, weekday model.Weekday, caps allocator.Capacities) (*RouteDay, error) {
	var entries []model.OverlayEntry
	if record != nil {
		entries = allocator.OverlaysForDate(record.EntriesFor(route.ID), date)
	}

	passengers := allocator.EffectivePassengersForDate(route, entries, weekday)
	available, err := allocator.AvailableSeatsForDate(route, entries, weekday, caps)
	if err != nil {
		return nil, err
	}

	return &RouteDay{
		RouteID:        route.ID,
		Type:           route.Type,
		Date:           date,
		Operating:      weekday != "" && route.RunsOn(weekday),
		Passengers:     passengers,
		SeatsUsed:      allocator.SeatsUsed(passengers),
		SeatsAvailable: available,
	}, nil
}
