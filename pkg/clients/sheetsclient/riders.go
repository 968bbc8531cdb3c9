package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// Expected column names in the riders sheet
var riderFields = []string{
	"Unique ID",
	"Name",
	"Phone",
	"City",
	"Transport",
	"Arrival days",
	"Caregiver",
}

// ListRiders retrieves and parses rider profiles from the configured spreadsheet
func (c *Client) ListRiders(ctx context.Context) ([]model.Rider, error) {
	values, err := c.GetValues(ctx, c.sheetID, c.tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get rider data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	riders, err := parseRiders(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse riders: %w", err)
	}

	return riders, nil
}

// parseRiders converts raw spreadsheet data into Rider structs
func parseRiders(raw [][]interface{}) ([]model.Rider, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	// Build field index map from header row
	fieldIndexes := make(map[string]int)
	headerRow := raw[0]

	for _, field := range riderFields {
		index := -1
		for i, cell := range headerRow {
			if cellStr, ok := cell.(string); ok && strings.TrimSpace(cellStr) == field {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
		fieldIndexes[field] = index
	}

	getField := func(field string, row []interface{}) string {
		index, ok := fieldIndexes[field]
		if !ok || index >= len(row) {
			return ""
		}
		if str, ok := row[index].(string); ok {
			return strings.TrimSpace(str)
		}
		return ""
	}

	riders := make([]model.Rider, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		id := getField("Unique ID", row)
		// Skip empty rows
		if id == "" {
			continue
		}

		days, err := parseArrivalDays(getField("Arrival days", row))
		if err != nil {
			return nil, fmt.Errorf("invalid arrival days for rider in row %d: %w", i, err)
		}

		riders = append(riders, model.Rider{
			ID:           id,
			Name:         getField("Name", row),
			Phone:        getField("Phone", row),
			City:         getField("City", row),
			Transport:    getField("Transport", row),
			ArrivalDays:  days,
			HasCaregiver: parseYes(getField("Caregiver", row)),
		})
	}

	return riders, nil
}

// parseArrivalDays parses a comma separated list such as "Sunday, Tuesday"
func parseArrivalDays(cell string) ([]model.Weekday, error) {
	var days []model.Weekday
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day := model.Weekday(strings.ToUpper(part[:1]) + strings.ToLower(part[1:]))
		if !day.IsValid() {
			return nil, fmt.Errorf("unknown day %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

func parseYes(cell string) bool {
	switch strings.ToLower(cell) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
