package compare

import (
	"errors"
	"fmt"

	"github.com/pfrederiksen/regional-events/internal/event"
)

// ErrMissingSeed is returned when no event has a target window, leaving nothing to project from
var ErrMissingSeed = errors.New("no dated event to anchor predictions")

// RowKind distinguishes known releases from predicted ones
type RowKind string

const (
	RowDated     RowKind = "dated"
	RowPredicted RowKind = "predicted"
)

// Row is one line of the comparison table
type Row struct {
	Index  int           `json:"index"`
	Kind   RowKind       `json:"kind"`
	Type   event.Type    `json:"type,omitempty"`
	Meta   *event.Meta   `json:"meta,omitempty"`
	Link   string        `json:"link,omitempty"`
	Base   *event.Window `json:"base"`
	Target *event.Window `json:"target,omitempty"` // real window for dated rows, projected for predicted rows
	Diffs  Diffs         `json:"diffs"`

	PredictedStart  event.Date `json:"predicted_start,omitzero"`
	PredictedOffset int        `json:"predicted_offset_days,omitempty"`
}

// Predicted reports whether the target window of the row is a projection
func (r *Row) Predicted() bool {
	return r.Kind == RowPredicted
}

// Table is the full comparison between a base and a target region
type Table struct {
	Base   event.Region  `json:"base"`
	Target event.Region  `json:"target"`
	Seed   *event.Window `json:"seed"`
	Rows   []Row         `json:"rows"` // ascending index, records without a row are omitted
}

// Build runs both passes over records and returns the comparison table.
// Rows are placed by position in records; Record.Index is not consulted.
// Any error aborts the whole table; no partial rows are returned.
func Build(records []event.Record, base, target event.Region) (*Table, error) {
	corr, err := Correlate(records, base, target)
	if err != nil {
		return nil, err
	}
	predictions, err := Project(corr.Seed, corr.Items)
	if err != nil {
		return nil, fmt.Errorf("comparing %s to %s: %w", base, target, err)
	}

	rows := make([]*Row, len(records))

	for i := range corr.Items {
		item := &corr.Items[i]
		if !item.Dated() {
			continue
		}
		row := newRow(item, base, target, RowDated)
		row.Target = item.Target
		row.Diffs = item.Diffs
		rows[item.Index()] = row
	}

	for _, pred := range predictions {
		item := pred.Classification
		window := pred.Window
		row := newRow(item, base, target, RowPredicted)
		row.Target = &window
		row.Diffs = pred.Diffs
		row.PredictedStart = pred.Start()
		row.PredictedOffset = pred.Offset
		rows[item.Index()] = row
	}

	table := &Table{
		Base:   base,
		Target: target,
		Seed:   corr.Seed,
		Rows:   make([]Row, 0, len(corr.Items)),
	}
	for _, row := range rows {
		if row != nil {
			table.Rows = append(table.Rows, *row)
		}
	}
	return table, nil
}

func newRow(item *Classification, base, target event.Region, kind RowKind) *Row {
	return &Row{
		Index: item.Index(),
		Kind:  kind,
		Type:  item.Record.Type,
		Meta:  item.Record.Meta,
		Link:  item.Record.ExternalLink(base, target),
		Base:  item.Base,
	}
}

// Reversed returns the rows newest first
func (t *Table) Reversed() []Row {
	out := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out[len(t.Rows)-1-i] = row
	}
	return out
}
