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

// RosterStore defines the database operations needed to manage regular rosters
type RosterStore interface {
	db.RouteStore
	db.RiderSource
}

// MatchResult holds the candidate routes for a rider and how the caller should treat them
type MatchResult struct {
	Rider   model.Rider
	Matches []model.Route
	Outcome allocator.MatchOutcome
}

// AutoAssignResult reports the match and, when there was exactly one candidate, the route assigned to
type AutoAssignResult struct {
	Match    *MatchResult
	Assigned *model.Route
}

// SyncResult lists the routes touched by a profile sync
type SyncResult struct {
	Updated []string
	Removed []string
}

// FindRoutesForRider matches a rider's profile against every route
func FindRoutesForRider(ctx context.Context, store RosterStore, logger *zap.Logger, opts Options, riderID string) (*MatchResult, error) {
	rider, err := findRider(ctx, store, riderID)
	if err != nil {
		return nil, err
	}

	routes, err := store.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	query := allocator.QueryForRider(*rider)
	logger.Debug("Matching rider",
		zap.String("rider_id", riderID),
		zap.String("city", query.City),
		zap.String("route_type", string(query.RouteType)),
		zap.Int("required_days", len(query.RequiredDays)),
		zap.Bool("has_caregiver", query.HasCaregiver))

	matches, err := allocator.FindMatchingRoutes(routes, query, opts.capacities())
	if err != nil {
		return nil, fmt.Errorf("failed to match routes: %w", err)
	}

	result := &MatchResult{
		Rider:   *rider,
		Matches: matches,
		Outcome: allocator.Outcome(matches),
	}

	logger.Info("Matched rider",
		zap.String("rider_id", riderID),
		zap.Int("matches", len(matches)),
		zap.String("outcome", string(result.Outcome)))

	return result, nil
}

// AssignRider adds a rider to a route's regular roster, or refreshes their entry.
// The rider must fit on every day they share with the route unless overbooking is allowed.
func AssignRider(ctx context.Context, store RosterStore, logger *zap.Logger, opts Options, routeID, riderID string) (*model.Route, error) {
	rider, err := findRider(ctx, store, riderID)
	if err != nil {
		return nil, err
	}
	if !rider.NeedsTransport() {
		return nil, fmt.Errorf("%w: rider %s has no transport requirement", allocator.ErrInvalidInput, riderID)
	}

	passenger := rider.AsPassenger()

	var saved model.Route
	err = withRetry(ctx, logger, opts, "assign_rider", func() error {
		route, err := getRoute(ctx, store, routeID)
		if err != nil {
			return err
		}

		onRoute := passenger
		onRoute.ArrivalDays = daysOnRoute(*route, passenger.ArrivalDays)
		if len(onRoute.ArrivalDays) == 0 {
			return fmt.Errorf("route %s for rider %s: %w", routeID, riderID, allocator.ErrRouteNotOperating)
		}

		if !opts.AllowOverbooking {
			if err := checkRegularSeat(*route, onRoute, opts.capacities()); err != nil {
				return err
			}
		}

		updated, err := allocator.AssignRider(*route, onRoute, opts.capacities())
		if err != nil {
			return err
		}

		if err := store.SaveRoute(ctx, &updated); err != nil {
			return fmt.Errorf("failed to save route: %w", err)
		}
		saved = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Rider assigned",
		zap.String("route_id", routeID),
		zap.String("rider_id", riderID),
		zap.Int("seats", passenger.Seats()))

	return &saved, nil
}

// AutoAssignRider assigns the rider when exactly one route matches
func AutoAssignRider(ctx context.Context, store RosterStore, logger *zap.Logger, opts Options, riderID string) (*AutoAssignResult, error) {
	match, err := FindRoutesForRider(ctx, store, logger, opts, riderID)
	if err != nil {
		return nil, err
	}

	result := &AutoAssignResult{Match: match}
	if match.Outcome != allocator.OutcomeSingleMatch {
		logger.Info("Rider not auto-assigned",
			zap.String("rider_id", riderID),
			zap.String("outcome", string(match.Outcome)))
		return result, nil
	}

	assigned, err := AssignRider(ctx, store, logger, opts, match.Matches[0].ID, riderID)
	if err != nil {
		return nil, err
	}
	result.Assigned = assigned
	return result, nil
}

// UnassignRider removes a rider from one route's regular roster. Removing an absent rider is a no-op.
func UnassignRider(ctx context.Context, store db.RouteStore, logger *zap.Logger, opts Options, routeID, riderID string) (*model.Route, error) {
	var saved model.Route
	err := withRetry(ctx, logger, opts, "unassign_rider", func() error {
		route, err := getRoute(ctx, store, routeID)
		if err != nil {
			return err
		}

		if route.FindPassenger(riderID) < 0 {
			logger.Debug("Rider not on route", zap.String("route_id", routeID), zap.String("rider_id", riderID))
			saved = *route
			return nil
		}

		updated, err := allocator.RemoveRider(*route, riderID, opts.capacities())
		if err != nil {
			return err
		}

		if err := store.SaveRoute(ctx, &updated); err != nil {
			return fmt.Errorf("failed to save route: %w", err)
		}
		saved = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Rider unassigned", zap.String("route_id", routeID), zap.String("rider_id", riderID))
	return &saved, nil
}

// RemoveRiderFromAllRoutes drops the rider from every roster.
// All route writes have completed when it returns, so the caller can then delete the profile.
func RemoveRiderFromAllRoutes(ctx context.Context, store db.RouteStore, logger *zap.Logger, opts Options, riderID string) ([]string, error) {
	routes, err := store.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	removed := make([]string, 0)
	for _, route := range routes {
		if route.FindPassenger(riderID) < 0 {
			continue
		}

		if _, err := UnassignRider(ctx, store, logger, opts, route.ID, riderID); err != nil {
			return removed, fmt.Errorf("failed to remove rider from route %s: %w", route.ID, err)
		}
		removed = append(removed, route.ID)
	}

	logger.Info("Rider removed from all routes",
		zap.String("rider_id", riderID),
		zap.Strings("route_ids", removed))

	return removed, nil
}

// SyncRiderProfile copies the rider's current profile onto every roster entry.
// A rider who switched to private transport is removed from every route instead.
func SyncRiderProfile(ctx context.Context, store RosterStore, logger *zap.Logger, opts Options, riderID string) (*SyncResult, error) {
	rider, err := findRider(ctx, store, riderID)
	if err != nil {
		return nil, err
	}

	if !rider.NeedsTransport() {
		logger.Debug("Rider no longer needs transport", zap.String("rider_id", riderID))
		removed, err := RemoveRiderFromAllRoutes(ctx, store, logger, opts, riderID)
		if err != nil {
			return nil, err
		}
		return &SyncResult{Updated: []string{}, Removed: removed}, nil
	}

	patch := allocator.PassengerPatch{
		Name:         &rider.Name,
		Phone:        &rider.Phone,
		City:         &rider.City,
		HasCaregiver: &rider.HasCaregiver,
	}

	routes, err := store.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	result := &SyncResult{Updated: []string{}, Removed: []string{}}
	for _, listed := range routes {
		if listed.FindPassenger(riderID) < 0 {
			continue
		}

		err := withRetry(ctx, logger, opts, "sync_rider_profile", func() error {
			route, err := getRoute(ctx, store, listed.ID)
			if err != nil {
				return err
			}

			routePatch := patch
			routePatch.ArrivalDays = daysOnRoute(*route, rider.ArrivalDays)

			updated, changed, err := allocator.UpdateRiderFields([]model.Route{*route}, riderID, routePatch, opts.capacities())
			if err != nil {
				return err
			}
			if len(changed) == 0 {
				return nil
			}

			if err := store.SaveRoute(ctx, &updated[0]); err != nil {
				return fmt.Errorf("failed to save route: %w", err)
			}
			warnIfOverbooked(logger, updated[0])
			result.Updated = append(result.Updated, route.ID)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to sync rider on route %s: %w", listed.ID, err)
		}
	}

	logger.Info("Rider profile synced",
		zap.String("rider_id", riderID),
		zap.Strings("route_ids", result.Updated))

	return result, nil
}

// daysOnRoute keeps the arrival days the route runs on. Never nil, so a patch always sets the days.
func daysOnRoute(route model.Route, days []model.Weekday) []model.Weekday {
	shared := make([]model.Weekday, 0, len(days))
	for _, day := range days {
		if route.RunsOn(day) && !slices.Contains(shared, day) {
			shared = append(shared, day)
		}
	}
	return shared
}

// checkRegularSeat verifies the passenger fits on every day they share with the route,
// ignoring any seat they already hold
func checkRegularSeat(route model.Route, passenger model.Passenger, caps allocator.Capacities) error {
	without, err := allocator.RemoveRider(route, passenger.ID, caps)
	if err != nil {
		return err
	}

	for _, day := range passenger.ArrivalDays {
		if !route.RunsOn(day) {
			continue
		}
		if available := without.AvailableSeats[day]; available < passenger.Seats() {
			return &allocator.CapacityError{
				RouteID:   route.ID,
				Day:       string(day),
				Needed:    passenger.Seats(),
				Available: max(available, 0),
			}
		}
	}
	return nil
}

func warnIfOverbooked(logger *zap.Logger, route model.Route) {
	for _, day := range route.Days {
		if route.AvailableSeats[day] < 0 {
			logger.Warn("Route overbooked after profile change",
				zap.String("route_id", route.ID),
				zap.String("day", string(day)),
				zap.Int("available", route.AvailableSeats[day]))
		}
	}
}
