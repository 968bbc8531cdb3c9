package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

var rruleWeekdays = map[model.Weekday]rrule.Weekday{
	model.Sunday:    rrule.SU,
	model.Monday:    rrule.MO,
	model.Tuesday:   rrule.TU,
	model.Wednesday: rrule.WE,
	model.Thursday:  rrule.TH,
}

// ServiceDates returns the dates in [from, to] on which the route runs, skipping closures
func ServiceDates(ctx context.Context, store db.RouteStore, logger *zap.Logger, opts Options, routeID string, from, to time.Time) ([]time.Time, error) {
	from = startOfDay(from)
	to = startOfDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s is before start %s", allocator.ErrInvalidInput,
			to.Format(model.DateLayout), from.Format(model.DateLayout))
	}

	route, err := getRoute(ctx, store, routeID)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0)
	if len(route.Days) == 0 {
		return dates, nil
	}

	byWeekday := make([]rrule.Weekday, 0, len(route.Days))
	for _, day := range route.Days {
		if wd, ok := rruleWeekdays[day]; ok {
			byWeekday = append(byWeekday, wd)
		}
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byWeekday,
		Dtstart:   from,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build route schedule: %w", err)
	}

	closed, err := closureDates(opts.Closures, from, to)
	if err != nil {
		return nil, err
	}

	for _, occurrence := range rule.Between(from, to, true) {
		if closed[occurrence.Format(model.DateLayout)] {
			continue
		}
		dates = append(dates, occurrence)
	}

	logger.Debug("Computed service dates",
		zap.String("route_id", routeID),
		zap.Int("dates", len(dates)),
		zap.Int("closures", len(closed)))

	return dates, nil
}

// closureEpoch (a Sunday) anchors closure rules that carry no DTSTART of their own,
// so INTERVAL rules keep one phase whatever range is queried
var closureEpoch = time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)

// parseClosure parses a closure rule, anchoring it to closureEpoch unless it sets DTSTART
func parseClosure(closure string) (*rrule.RRule, error) {
	opt, err := rrule.StrToROption(closure)
	if err != nil {
		return nil, err
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = closureEpoch
	}
	return rrule.NewRRule(*opt)
}

// closureDates expands every closure rule over [from, to]
func closureDates(closures []string, from, to time.Time) (map[string]bool, error) {
	closed := make(map[string]bool)
	for i, closure := range closures {
		rule, err := parseClosure(closure)
		if err != nil {
			return nil, fmt.Errorf("failed to parse closure rule %d: %w", i, err)
		}

		for _, occurrence := range rule.Between(from, to, true) {
			closed[occurrence.Format(model.DateLayout)] = true
		}
	}
	return closed, nil
}

// isClosed returns true if any closure rule falls on the date
func isClosed(date string, closures []string) (bool, error) {
	if len(closures) == 0 {
		return false, nil
	}
	day, err := model.ParseDate(date)
	if err != nil {
		return false, fmt.Errorf("%w: %v", allocator.ErrInvalidDate, err)
	}
	closed, err := closureDates(closures, day, day)
	if err != nil {
		return false, err
	}
	return closed[date], nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
