package allocator

import (
	"fmt"
	"maps"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// Capacities maps a route type to its fixed seat count
type Capacities map[model.RouteType]int

// DefaultCapacities are the seat counts of the vehicle types the centre runs
var DefaultCapacities = Capacities{
	model.RouteTypeMinibus: 14,
	model.RouteTypeTaxi:    4,
}

// CapacityFor returns the seat count for a route type.
// Unknown types are a configuration error; there is no fallback capacity.
func (c Capacities) CapacityFor(routeType model.RouteType) (int, error) {
	seats, ok := c[routeType]
	if !ok {
		return 0, fmt.Errorf("%w: no seat capacity for route type %q", ErrConfiguration, routeType)
	}
	return seats, nil
}

// WithOverrides returns a copy of the capacities with the given entries added or replaced
func (c Capacities) WithOverrides(overrides map[string]int) Capacities {
	merged := maps.Clone(c)
	if merged == nil {
		merged = Capacities{}
	}
	for routeType, seats := range overrides {
		merged[model.RouteType(routeType)] = seats
	}
	return merged
}
