package allocator

import (
	"slices"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// MatchQuery describes what a rider needs from a route
type MatchQuery struct {
	RequiredDays []model.Weekday
	City         string
	RouteType    model.RouteType
	HasCaregiver bool

	// ExcludeRiderID ignores this rider's existing seat when counting occupancy
	ExcludeRiderID string
}

// QueryForRider builds a match query from a rider profile
func QueryForRider(rider model.Rider) MatchQuery {
	return MatchQuery{
		RequiredDays:   rider.ArrivalDays,
		City:           rider.City,
		RouteType:      model.RouteType(rider.Transport),
		HasCaregiver:   rider.HasCaregiver,
		ExcludeRiderID: rider.ID,
	}
}

// IsComplete returns false when the query can't match anything (no transport needed or incomplete profile)
func (q MatchQuery) IsComplete() bool {
	return q.RouteType != "" &&
		q.RouteType != model.TransportPrivate &&
		q.City != "" &&
		len(q.RequiredDays) > 0
}

// MatchOutcome classifies a match result for the caller
type MatchOutcome string

const (
	OutcomeNoRoute         MatchOutcome = "no_route"
	OutcomeSingleMatch     MatchOutcome = "single_match"
	OutcomeMultipleMatches MatchOutcome = "multiple_matches"
)

// Outcome tells the caller whether to signal "no route", auto-assign, or offer a choice
func Outcome(matches []model.Route) MatchOutcome {
	switch len(matches) {
	case 0:
		return OutcomeNoRoute
	case 1:
		return OutcomeSingleMatch
	default:
		return OutcomeMultipleMatches
	}
}

// FindMatchingRoutes filters routes to those compatible with the query.
//
// A route is a candidate when:
//   - its type equals the requested type
//   - it runs on at least one required day (a subset of the rider's days is fine)
//   - it serves the rider's city
//   - on every required day it runs, regular availability covers the rider's seats
//
// Candidates keep their original order; there is no ranking.
// An incomplete query returns no routes and no error.
func FindMatchingRoutes(routes []model.Route, query MatchQuery, caps Capacities) ([]model.Route, error) {
	matches := make([]model.Route, 0)
	if !query.IsComplete() {
		return matches, nil
	}

	seatsNeeded := model.SeatsFor(query.HasCaregiver)

	for _, route := range routes {
		if route.Type != query.RouteType {
			continue
		}

		sharedDays := sharedDays(route.Days, query.RequiredDays)
		if len(sharedDays) == 0 {
			continue
		}

		if !route.Serves(query.City) {
			continue
		}

		// Recompute rather than trusting the stored cache
		available, err := availableSeatsExcluding(route, query.ExcludeRiderID, caps)
		if err != nil {
			return nil, err
		}

		hasRoom := true
		for _, day := range sharedDays {
			if available[day] < seatsNeeded {
				hasRoom = false
				break
			}
		}
		if !hasRoom {
			continue
		}

		matches = append(matches, route)
	}

	return matches, nil
}

// sharedDays returns the required days that the route runs on
func sharedDays(routeDays, requiredDays []model.Weekday) []model.Weekday {
	shared := make([]model.Weekday, 0, len(requiredDays))
	for _, day := range requiredDays {
		if slices.Contains(routeDays, day) && !slices.Contains(shared, day) {
			shared = append(shared, day)
		}
	}
	return shared
}
