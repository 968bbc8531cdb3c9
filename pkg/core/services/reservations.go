package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

// ReservationStore defines the database operations needed for temporary reservations
type ReservationStore interface {
	db.RouteStore
	db.DateRecordStore
	db.RiderSource
}

// ReservationResult describes a route's overlay for one date after a reservation
type ReservationResult struct {
	RouteID string                `json:"routeId"`
	Date    string                `json:"date"`
	RiderID string                `json:"riderId"`
	Status  allocator.RiderStatus `json:"status"`
	Entries []model.OverlayEntry  `json:"entries"`
}

// ReserveTemporary records a single-date addition or removal for a rider on a route.
// Only this route's entries in the date record change; the regular roster is never touched.
func ReserveTemporary(ctx context.Context, store ReservationStore, logger *zap.Logger, opts Options, routeID, date, riderID string, kind model.OverlayType) (*ReservationResult, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown reservation type %q", allocator.ErrInvalidInput, kind)
	}
	if _, err := model.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", allocator.ErrInvalidDate, err)
	}

	var rider *model.Rider
	if kind == model.OverlayAddition {
		var err error
		rider, err = findRider(ctx, store, riderID)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Reserving temporary change",
		zap.String("route_id", routeID),
		zap.String("date", date),
		zap.String("rider_id", riderID),
		zap.String("type", string(kind)))

	result := &ReservationResult{RouteID: routeID, Date: date, RiderID: riderID}
	err := withRetry(ctx, logger, opts, "reserve_temporary", func() error {
		route, err := getRoute(ctx, store, routeID)
		if err != nil {
			return err
		}

		record, err := store.GetDateRecord(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to get date record: %w", err)
		}
		if record == nil {
			record = &model.DateRecord{Date: date}
		}
		entries := record.EntriesFor(routeID)

		var next []model.OverlayEntry
		if kind == model.OverlayAddition {
			next, err = allocator.ReserveAddition(*route, entries, date, *rider, opts.capacities())
		} else {
			next, err = allocator.ReserveRemoval(*route, entries, date, riderID)
		}
		if err != nil {
			return err
		}

		if !slices.Equal(entries, next) {
			record.SetEntries(routeID, next)
			if err := store.SaveDateRecord(ctx, record); err != nil {
				return fmt.Errorf("failed to save date record: %w", err)
			}
		}

		status, err := allocator.StatusFor(*route, next, date, riderID)
		if err != nil {
			return err
		}
		result.Status = status
		result.Entries = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Temporary reservation recorded",
		zap.String("route_id", routeID),
		zap.String("date", date),
		zap.String("rider_id", riderID),
		zap.String("status", string(result.Status)))

	return result, nil
}
