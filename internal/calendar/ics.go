// Package calendar exports comparison tables as iCalendar feeds.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/pfrederiksen/regional-events/internal/compare"
	"github.com/pfrederiksen/regional-events/internal/render"
)

const productID = "-//regional-events//Regional Event Schedule//KO"

// uidNamespace keeps event UIDs stable across exports
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pfrederiksen/regional-events"))

// Build returns a calendar with one all-day event per table row, scheduled in the
// target region. Predicted rows are exported as tentative events.
func Build(table *compare.Table, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(fmt.Sprintf("%s → %s", table.Base.Label(), table.Target.Label()))

	for i := range table.Rows {
		row := &table.Rows[i]
		if row.Target == nil {
			continue
		}

		evt := cal.AddEvent(EventUID(table, row))
		evt.SetDtStampTime(now)
		evt.SetAllDayStartAt(row.Target.Start.Time())
		// DTEND is exclusive for all-day events
		evt.SetAllDayEndAt(row.Target.End.AddDays(1).Time())
		evt.SetDescription(describe(table, row))
		if row.Link != "" {
			evt.SetURL(row.Link)
		}
		if row.Type != "" {
			evt.AddCategory(row.Type.Label())
		}

		if row.Predicted() {
			evt.SetSummary(row.Base.Title + "?")
			evt.SetStatus(ical.ObjectStatusTentative)
		} else {
			evt.SetSummary(row.Target.Title)
			evt.SetStatus(ical.ObjectStatusConfirmed)
		}
	}

	return cal
}

// GenerateICS returns the serialized calendar for table
func GenerateICS(table *compare.Table, now time.Time) string {
	return Build(table, now).Serialize()
}

// WriteICS writes the serialized calendar for table to w
func WriteICS(w io.Writer, table *compare.Table, now time.Time) error {
	return Build(table, now).SerializeTo(w)
}

// EventUID derives the UID of a row from the region pair and the record index
func EventUID(table *compare.Table, row *compare.Row) string {
	name := fmt.Sprintf("%s:%s:%d", table.Base, table.Target, row.Index)
	return uuid.NewSHA1(uidNamespace, []byte(name)).String()
}

func describe(table *compare.Table, row *compare.Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s ~ %s (%s)\n", table.Base.Label(), row.Base.Start, row.Base.End, render.DurationLabel(row.Base.Days()))
	if row.Predicted() {
		fmt.Fprintf(&b, "%s: %s? (%s?)", table.Target.Label(), row.PredictedStart, render.OffsetLabel(row.PredictedOffset))
	} else {
		fmt.Fprintf(&b, "%s: %s ~ %s (%s, %s)", table.Target.Label(), row.Target.Start, row.Target.End,
			render.DurationLabel(row.Diffs.DurationTarget), render.OffsetLabel(row.Diffs.Offset))
	}
	return b.String()
}
