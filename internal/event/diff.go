package event

import (
	"fmt"
	"time"
)

// ChangeType classifies a change between two versions of the dataset
type ChangeType string

const (
	ChangeNew       ChangeType = "new"
	ChangeWindow    ChangeType = "window"
	ChangeLink      ChangeType = "link"
	ChangeAttribute ChangeType = "attribute"
)

// Change represents one difference detected between two dataset versions
type Change struct {
	Index      int        `json:"index"`
	Region     Region     `json:"region,omitempty"`
	ChangeType ChangeType `json:"change_type"`
	OldValue   string     `json:"old_value"`
	NewValue   string     `json:"new_value"`
	DetectedAt time.Time  `json:"detected_at"`
}

func (c *Change) String() string {
	if c.Region != "" {
		return fmt.Sprintf("#%d %s %s: %q -> %q", c.Index+1, c.Region, c.ChangeType, c.OldValue, c.NewValue)
	}
	return fmt.Sprintf("#%d %s: %q -> %q", c.Index+1, c.ChangeType, c.OldValue, c.NewValue)
}

// DetectChanges compares two versions of one record. A nil previous means the record is new.
func DetectChanges(previous, current *Record) []*Change {
	now := time.Now().UTC()

	if previous == nil {
		title := ""
		if w := current.Window(Japan); w != nil {
			title = w.Title
		}
		return []*Change{{
			Index:      current.Index,
			ChangeType: ChangeNew,
			NewValue:   title,
			DetectedAt: now,
		}}
	}

	var changes []*Change

	for _, region := range Regions {
		oldValue := describeWindow(previous.Window(region))
		newValue := describeWindow(current.Window(region))
		if oldValue != newValue {
			changes = append(changes, &Change{
				Index:      current.Index,
				Region:     region,
				ChangeType: ChangeWindow,
				OldValue:   oldValue,
				NewValue:   newValue,
				DetectedAt: now,
			})
		}
	}

	if previous.LinkID != current.LinkID {
		changes = append(changes, &Change{
			Index:      current.Index,
			ChangeType: ChangeLink,
			OldValue:   previous.LinkID,
			NewValue:   current.LinkID,
			DetectedAt: now,
		})
	}

	if oldAttr, newAttr := attributeOf(previous), attributeOf(current); oldAttr != newAttr {
		changes = append(changes, &Change{
			Index:      current.Index,
			ChangeType: ChangeAttribute,
			OldValue:   oldAttr,
			NewValue:   newAttr,
			DetectedAt: now,
		})
	}

	return changes
}

// CompareDatasets pairs records by position and returns every detected change
func CompareDatasets(previous, current []Record) []*Change {
	var all []*Change
	for i := range current {
		if i < len(previous) {
			all = append(all, DetectChanges(&previous[i], &current[i])...)
			continue
		}
		all = append(all, DetectChanges(nil, &current[i])...)
	}
	return all
}

func describeWindow(w *Window) string {
	if w == nil {
		return ""
	}
	s := fmt.Sprintf("%s (%s ~ %s)", w.Title, w.Start, w.End)
	if w.NoticeID != "" {
		s += " " + w.NoticeID
	}
	return s
}

func attributeOf(r *Record) string {
	if r.Meta == nil {
		return ""
	}
	return r.Meta.Attribute
}

// Clone returns a deep copy of records so a dataset can be mutated and compared later
func Clone(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r
		if r.Meta != nil {
			meta := *r.Meta
			if meta.DreamFestival != nil {
				df := *meta.DreamFestival
				meta.DreamFestival = &df
			}
			out[i].Meta = &meta
		}
		for _, region := range Regions {
			if w := r.Window(region); w != nil {
				copied := *w
				out[i].Regions.Set(region, &copied)
			}
		}
	}
	return out
}
