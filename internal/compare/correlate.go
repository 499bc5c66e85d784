package compare

import (
	"github.com/pfrederiksen/regional-events/internal/event"
)

// Diffs is the timing relation between a base window and a target window
type Diffs struct {
	DurationBase   int `json:"duration_base"`   // inclusive days
	DurationTarget int `json:"duration_target"` // inclusive days
	Offset         int `json:"offset_days"`     // target start minus base start
}

// GetDiffs computes the inclusive durations of both windows and the offset between their starts
func GetDiffs(base, target *event.Window) Diffs {
	return Diffs{
		DurationBase:   base.Days(),
		DurationTarget: target.Days(),
		Offset:         event.DiffDays(base.Start, target.Start),
	}
}

// Trend compares the target duration against the base duration:
// "excess" when the target runs longer, "under" when shorter, "" when equal
func (d Diffs) Trend() string {
	switch {
	case d.DurationBase == d.DurationTarget:
		return ""
	case d.DurationBase < d.DurationTarget:
		return "excess"
	default:
		return "under"
	}
}

// Classification is the correlator's verdict on one record
type Classification struct {
	Record *event.Record
	// Position is the offset of Record in the sequence given to Correlate
	Position int
	Base   *event.Window
	Target *event.Window // nil for undated events
	Diffs  Diffs         // zero for undated events

	// PrecedingBase is the base window of the record at Index-1, set for undated
	// events only. It is nil for the first record, which cannot be projected.
	PrecedingBase *event.Window
}

// Dated reports whether the target region already has a window for this event
func (c *Classification) Dated() bool {
	return c.Target != nil
}

// Index returns the position of the classified record in the correlated sequence
func (c *Classification) Index() int {
	return c.Position
}

// Correlation is the result of one pass over the dataset
type Correlation struct {
	Base   event.Region
	Target event.Region
	Items  []Classification

	// Seed is the dated target window with the latest start, or nil when no
	// event is dated. Ties keep the window encountered first.
	Seed *event.Window
}

// Correlate pairs the base and target windows of every record in order.
// It stops at the first record without a base window: later records are not
// usable and produce no classification.
func Correlate(records []event.Record, base, target event.Region) (*Correlation, error) {
	if err := validateSelection(base, target); err != nil {
		return nil, err
	}

	c := &Correlation{
		Base:   base,
		Target: target,
		Items:  make([]Classification, 0, len(records)),
	}

	for i := range records {
		rec := &records[i]
		baseWindow := rec.Window(base)
		if baseWindow == nil {
			break
		}

		item := Classification{Record: rec, Position: i, Base: baseWindow}

		if targetWindow := rec.Window(target); targetWindow != nil {
			item.Target = targetWindow
			item.Diffs = GetDiffs(baseWindow, targetWindow)
			if c.Seed == nil || event.DiffDays(c.Seed.Start, targetWindow.Start) > 0 {
				c.Seed = targetWindow
			}
		} else if i > 0 {
			item.PrecedingBase = records[i-1].Window(base)
		}

		c.Items = append(c.Items, item)
	}

	return c, nil
}

func validateSelection(base, target event.Region) error {
	if !base.Valid() {
		return &event.UnknownRegionError{Value: string(base)}
	}
	if !target.Valid() {
		return &event.UnknownRegionError{Value: string(target)}
	}
	return nil
}
