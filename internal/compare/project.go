package compare

import (
	"github.com/pfrederiksen/regional-events/internal/event"
)

// Prediction is the projected target window of one undated event
type Prediction struct {
	Classification *Classification
	Window         event.Window // synthesized, never written back to the record
	Diffs          Diffs        // between the base window and Window
	Offset         int          // predicted days from base start to target start
}

// Start returns the predicted target start date
func (p *Prediction) Start() event.Date {
	return p.Classification.Base.Start.AddDays(p.Offset)
}

// Projector carries the last known target window across undated events
type Projector struct {
	last event.Window
}

// NewProjector starts a projection anchored at seed.
// It returns ErrMissingSeed when seed is nil.
func NewProjector(seed *event.Window) (*Projector, error) {
	if seed == nil {
		return nil, ErrMissingSeed
	}
	return &Projector{last: *seed}, nil
}

// Last returns the window subsequent projections chain off
func (p *Projector) Last() event.Window {
	return p.last
}

// Next projects the target window of c and advances the projector to it.
// It returns false, leaving the projector untouched, for dated events and for
// undated events without a preceding base window.
func (p *Projector) Next(c *Classification) (Prediction, bool) {
	if c.Dated() || c.PrecedingBase == nil {
		return Prediction{}, false
	}

	current := c.Base
	blank := event.DiffDays(c.PrecedingBase.End, current.Start)
	duration := current.Span()

	projected := event.Window{
		Title: current.Title,
		Start: p.last.End.AddDays(blank),
		End:   p.last.End.AddDays(blank + duration),
	}

	diffs := GetDiffs(current, &projected)
	p.last = projected

	return Prediction{
		Classification: c,
		Window:         projected,
		Diffs:          diffs,
		Offset:         diffs.Offset + diffs.DurationTarget - diffs.DurationBase,
	}, true
}

// Project folds a projector seeded at seed over items in order and returns
// one prediction per projectable undated event
func Project(seed *event.Window, items []Classification) ([]Prediction, error) {
	p, err := NewProjector(seed)
	if err != nil {
		return nil, err
	}
	predictions := make([]Prediction, 0)
	for i := range items {
		if pred, ok := p.Next(&items[i]); ok {
			predictions = append(predictions, pred)
		}
	}
	return predictions, nil
}
