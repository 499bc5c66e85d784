// Package filter narrows a comparison table down to the rows a reader cares about.
//
// Rows can be selected by:
//   - Target date range (from/to, inclusive; predicted rows use the projected window)
//   - Event types
//   - Titles (substring matching, case-insensitive, on base and target titles)
//   - Kind (dated rows only or predicted rows only)
//
// Filtering runs after the table is built, so predictions are always projected
// from the full dataset.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Types = []event.Type{event.TypeChallenge}
//	f.Kind = compare.RowPredicted
//
//	filtered := f.Apply(table)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/regional-events/internal/compare"
	"github.com/pfrederiksen/regional-events/internal/event"
)

// Filter represents row filtering criteria
type Filter struct {
	// Target date range filtering, zero means unbounded
	From event.Date `json:"from,omitzero"`
	To   event.Date `json:"to,omitzero"`

	Types  []event.Type `json:"types,omitempty"`
	Titles []string     `json:"titles,omitempty"`

	// Kind restricts rows to dated or predicted ones, empty matches both
	Kind compare.RowKind `json:"kind,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all rows until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Types:  []event.Type{},
		Titles: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return f.From.IsZero() &&
		f.To.IsZero() &&
		len(f.Types) == 0 &&
		len(f.Titles) == 0 &&
		f.Kind == ""
}

// Matches checks if a row matches all active filter criteria.
// An empty filter matches all rows.
func (f *Filter) Matches(row *compare.Row) bool {
	if f.IsEmpty() {
		return true
	}

	if f.Kind != "" && row.Kind != f.Kind {
		return false
	}

	if row.Target != nil {
		if !f.From.IsZero() && event.DiffDays(f.From, row.Target.Start) < 0 {
			return false
		}
		if !f.To.IsZero() && event.DiffDays(row.Target.Start, f.To) < 0 {
			return false
		}
	}

	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if row.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Titles) > 0 {
		var titles []string
		if row.Base != nil {
			titles = append(titles, strings.ToLower(row.Base.Title))
		}
		if row.Target != nil && !row.Predicted() {
			titles = append(titles, strings.ToLower(row.Target.Title))
		}

		matched := false
		for _, want := range f.Titles {
			want = strings.ToLower(want)
			for _, title := range titles {
				if strings.Contains(title, want) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns a copy of table holding only the matching rows.
// If the filter is empty, returns the original table unchanged.
func (f *Filter) Apply(table *compare.Table) *compare.Table {
	if f.IsEmpty() {
		return table
	}

	filtered := *table
	filtered.Rows = make([]compare.Row, 0, len(table.Rows))
	for i := range table.Rows {
		if f.Matches(&table.Rows[i]) {
			filtered.Rows = append(filtered.Rows, table.Rows[i])
		}
	}
	return &filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: 2024-01-01 | To: 2024-03-31 | Types: challenge | Predicted only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if !f.From.IsZero() {
		parts = append(parts, fmt.Sprintf("From: %s", f.From))
	}

	if !f.To.IsZero() {
		parts = append(parts, fmt.Sprintf("To: %s", f.To))
	}

	if len(f.Types) > 0 {
		names := make([]string, len(f.Types))
		for i, t := range f.Types {
			names[i] = string(t)
		}
		parts = append(parts, fmt.Sprintf("Types: %s", strings.Join(names, ", ")))
	}

	if len(f.Titles) > 0 {
		parts = append(parts, fmt.Sprintf("Titles: %s", strings.Join(f.Titles, ", ")))
	}

	switch f.Kind {
	case compare.RowDated:
		parts = append(parts, "Dated only")
	case compare.RowPredicted:
		parts = append(parts, "Predicted only")
	}

	return strings.Join(parts, " | ")
}
