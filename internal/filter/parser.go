package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/regional-events/internal/compare"
	"github.com/pfrederiksen/regional-events/internal/event"
)

var (
	monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	yearPattern  = regexp.MustCompile(`^(\d{4})$`)
)

// ParseDateRange parses a date range string into inclusive bounds.
//
// Supported formats:
//   - "2024-01-10..2024-02-20" - Explicit range
//   - "2024-01-10.." or "..2024-02-20" - Open-ended range
//   - "2024-03" - Entire month
//   - "2024" - Entire year
//
// A zero bound means unbounded on that side.
func ParseDateRange(input string) (event.Date, event.Date, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return event.Date{}, event.Date{}, fmt.Errorf("date range cannot be empty")
	}

	if fromText, toText, ok := strings.Cut(input, ".."); ok {
		var from, to event.Date
		var err error
		if fromText = strings.TrimSpace(fromText); fromText != "" {
			if from, err = event.ParseDate(fromText); err != nil {
				return event.Date{}, event.Date{}, err
			}
		}
		if toText = strings.TrimSpace(toText); toText != "" {
			if to, err = event.ParseDate(toText); err != nil {
				return event.Date{}, event.Date{}, err
			}
		}
		if from.IsZero() && to.IsZero() {
			return event.Date{}, event.Date{}, fmt.Errorf("date range needs at least one bound")
		}
		if !from.IsZero() && !to.IsZero() && event.DiffDays(from, to) < 0 {
			return event.Date{}, event.Date{}, fmt.Errorf("start date must be before end date")
		}
		return from, to, nil
	}

	if matches := monthPattern.FindStringSubmatch(input); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		if month < 1 || month > 12 {
			return event.Date{}, event.Date{}, fmt.Errorf("invalid month: %s", matches[2])
		}
		from := event.DateOf(year, time.Month(month), 1)
		// Last day of month
		to := event.DateOf(year, time.Month(month)+1, 0)
		return from, to, nil
	}

	if matches := yearPattern.FindStringSubmatch(input); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		return event.DateOf(year, time.January, 1), event.DateOf(year, time.December, 31), nil
	}

	return event.Date{}, event.Date{}, fmt.Errorf("invalid date range format. Use '2024-01-10..2024-02-20', '2024-03', or '2024'")
}

// ParseTypes parses a comma-separated list of event types
func ParseTypes(input string) ([]event.Type, error) {
	var types []event.Type
	for _, part := range strings.Split(input, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		t := event.Type(name)
		if !t.Valid() {
			return nil, fmt.Errorf("invalid event type: %s", part)
		}
		types = append(types, t)
	}
	return types, nil
}

// ParseKind parses "dated", "predicted" or "" (both)
func ParseKind(input string) (compare.RowKind, error) {
	switch k := compare.RowKind(strings.ToLower(strings.TrimSpace(input))); k {
	case "", compare.RowDated, compare.RowPredicted:
		return k, nil
	default:
		return "", fmt.Errorf("invalid row kind: %s (must be 'dated' or 'predicted')", input)
	}
}

// Parse builds a filter from its textual form as given on the command line
// or in a query string. Empty inputs leave the matching criterion inactive.
func Parse(types, title, dateRange, kind string) (*Filter, error) {
	f := NewFilter()

	parsedTypes, err := ParseTypes(types)
	if err != nil {
		return nil, err
	}
	f.Types = append(f.Types, parsedTypes...)

	if title = strings.TrimSpace(title); title != "" {
		f.Titles = append(f.Titles, title)
	}

	if strings.TrimSpace(dateRange) != "" {
		if f.From, f.To, err = ParseDateRange(dateRange); err != nil {
			return nil, err
		}
	}

	if f.Kind, err = ParseKind(kind); err != nil {
		return nil, err
	}
	return f, nil
}
