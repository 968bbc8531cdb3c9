package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

// DefaultMaxWriteRetries is how many times a read-modify-write cycle is retried after a revision conflict
const DefaultMaxWriteRetries = 3

// Options carries the policy shared by every transport service
type Options struct {
	Capacities      allocator.Capacities
	MaxWriteRetries int

	// AllowOverbooking skips the seat check on regular assignment
	AllowOverbooking bool

	// Closures are rrule strings for days the centre is closed
	Closures []string
}

// DefaultOptions returns the built-in capacities with capacity enforcement on
func DefaultOptions() Options {
	return Options{
		Capacities:      allocator.DefaultCapacities,
		MaxWriteRetries: DefaultMaxWriteRetries,
	}
}

func (o Options) capacities() allocator.Capacities {
	if o.Capacities == nil {
		return allocator.DefaultCapacities
	}
	return o.Capacities
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return model.Weekday(fl.Field().String()).IsValid()
	}); err != nil {
		panic(fmt.Sprintf("failed to register weekday validation: %v", err))
	}
}

// validateStruct runs struct validation and tags failures as invalid input
func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", allocator.ErrInvalidInput, err)
	}
	return nil
}

// withRetry runs a read-modify-write cycle, re-running it when a save hits a revision conflict
func withRetry(ctx context.Context, logger *zap.Logger, opts Options, operation string, cycle func() error) error {
	for attempt := 0; ; attempt++ {
		err := cycle()
		if err == nil || !errors.Is(err, db.ErrConflict) || attempt >= opts.MaxWriteRetries {
			return err
		}

		logger.Debug("Revision conflict, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1))

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

// findRider looks up a rider profile by ID
func findRider(ctx context.Context, riders db.RiderSource, riderID string) (*model.Rider, error) {
	all, err := riders.ListRiders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list riders: %w", err)
	}
	for i := range all {
		if all[i].ID == riderID {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("rider %s: %w", riderID, allocator.ErrNotFound)
}

// getRoute loads a route, mapping absence to ErrNotFound
func getRoute(ctx context.Context, routes db.RouteStore, routeID string) (*model.Route, error) {
	route, err := routes.GetRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	if route == nil {
		return nil, fmt.Errorf("route %s: %w", routeID, allocator.ErrNotFound)
	}
	return route, nil
}
