package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// availabilityColor picks a color for a seat count:
// red when full or overbooked, yellow when a quarter or less is free, green otherwise
func availabilityColor(available, capacity int, green, yellow, red string) string {
	switch {
	case available <= 0:
		return red
	case available*4 <= capacity:
		return yellow
	default:
		return green
	}
}

// parseDays parses a comma separated day list. Full names or three letter
// abbreviations are accepted in any case ("Sunday,tue").
func parseDays(csv string) ([]model.Weekday, error) {
	var days []model.Weekday
	for _, part := range strings.Split(csv, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}

		var match model.Weekday
		for _, day := range model.WorkWeek {
			name := strings.ToLower(string(day))
			if part == name || (len(part) == 3 && strings.HasPrefix(name, part)) {
				match = day
				break
			}
		}
		if match == "" {
			return nil, fmt.Errorf("unknown day %q (the centre runs Sunday to Thursday)", part)
		}
		days = append(days, match)
	}
	return days, nil
}

// parseList splits a comma separated list, dropping blanks
func parseList(csv string) []string {
	var items []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func printRoute(out io.Writer, route model.Route, caps allocator.Capacities) {
	capacity, _ := caps.CapacityFor(route.Type)

	fmt.Fprintf(out, "Route %s  %s (%d seats)  %s\n", route.ID, route.Type, capacity, strings.Join(route.Cities, ", "))
	for _, day := range model.WorkWeek {
		if !route.RunsOn(day) {
			fmt.Fprintf(out, "  %s%-10s -%s\n", colorDim, day, colorReset)
			continue
		}
		available := route.AvailableSeats[day]
		color := availabilityColor(available, capacity, colorGreen, colorYellow, colorRed)
		fmt.Fprintf(out, "  %-10s %s%d free%s\n", day, color, available, colorReset)
	}

	if len(route.Passengers) > 0 {
		fmt.Fprintf(out, "  Passengers:\n")
		for _, p := range route.Passengers {
			printPassenger(out, p)
		}
	}
	fmt.Fprintln(out)
}

func printPassenger(out io.Writer, p model.Passenger) {
	caregiver := ""
	if p.HasCaregiver {
		caregiver = " +caregiver"
	}
	days := make([]string, len(p.ArrivalDays))
	for i, d := range p.ArrivalDays {
		days[i] = string(d)[:3]
	}
	fmt.Fprintf(out, "    - %s (%s)%s %s\n", p.Name, p.ID, caregiver, strings.Join(days, ","))
}

// explain prints the staff-facing message for err and returns err for the exit code
func explain(out io.Writer, err error) error {
	fmt.Fprintf(out, "%s✗ %s%s\n", colorRed, allocator.UserMessage(err), colorReset)
	return err
}
