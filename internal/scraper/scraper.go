package scraper

import (
	"context"

	"github.com/pfrederiksen/regional-events/internal/event"
)

// Updater refreshes a dataset from one upstream source. It may modify records in
// place and returns the updated dataset, which can be longer than the input.
type Updater interface {
	Name() string
	Update(ctx context.Context, records []event.Record) ([]event.Record, error)
}

// Result is the outcome of running an Updater
type Result struct {
	Records []event.Record
	Changes []*event.Change
}

// Run applies u to a copy of records and reports what changed
func Run(ctx context.Context, u Updater, records []event.Record) (*Result, error) {
	updated, err := u.Update(ctx, event.Clone(records))
	if err != nil {
		return nil, err
	}
	event.Reindex(updated)
	return &Result{
		Records: updated,
		Changes: event.CompareDatasets(records, updated),
	}, nil
}
