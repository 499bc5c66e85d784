package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/regional-events/internal/compare"
	"github.com/pfrederiksen/regional-events/internal/event"
)

// Format specifies the output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Options controls how a table is rendered
type Options struct {
	OldestFirst bool // default order is newest first
}

// RowRenderer writes a comparison table to w
type RowRenderer interface {
	Render(w io.Writer, table *compare.Table, opts Options) error
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatJSON, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'html')", s)
	}
}

// New returns the renderer for f
func New(f Format) (RowRenderer, error) {
	switch f {
	case FormatText:
		return TextRenderer{}, nil
	case FormatJSON:
		return JSONRenderer{}, nil
	case FormatHTML:
		return NewHTMLRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", f)
	}
}

// ContentType returns the MIME type of f
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// RowView is a table row with every cell formatted for display
type RowView struct {
	Number    int
	Predicted bool
	Link      string

	BaseTitle   string
	BaseLang    string
	TargetTitle string // empty for predicted rows
	TargetLang  string

	BaseStart      string
	BaseDuration   string
	TargetStart    string
	TargetDuration string // empty for predicted rows
	Trend          string
	Offset         string
}

// Views formats the rows of table in display order
func Views(table *compare.Table, opts Options) []RowView {
	rows := table.Rows
	if !opts.OldestFirst {
		rows = table.Reversed()
	}
	views := make([]RowView, len(rows))
	for i := range rows {
		views[i] = viewOf(table, &rows[i])
	}
	return views
}

func viewOf(table *compare.Table, row *compare.Row) RowView {
	v := RowView{
		Number:       row.Index + 1,
		Predicted:    row.Predicted(),
		Link:         row.Link,
		BaseTitle:    row.Base.Title,
		BaseLang:     table.Base.Tag().String(),
		TargetLang:   table.Target.Tag().String(),
		BaseStart:    row.Base.Start.String(),
		BaseDuration: DurationLabel(row.Base.Days()),
	}

	if row.Predicted() {
		v.TargetStart = row.PredictedStart.String() + "?"
		v.Offset = OffsetLabel(row.PredictedOffset) + "?"
		return v
	}

	v.TargetTitle = row.Target.Title
	v.TargetStart = row.Target.Start.String()
	v.TargetDuration = DurationLabel(row.Diffs.DurationTarget)
	v.Trend = row.Diffs.Trend()
	v.Offset = OffsetLabel(row.Diffs.Offset)
	return v
}

// DurationLabel formats an inclusive day count
func DurationLabel(days int) string {
	return fmt.Sprintf("%d일간", days)
}

// OffsetLabel formats a start offset in days
func OffsetLabel(days int) string {
	return fmt.Sprintf("%d일", days)
}

// RegionOption is one entry of the region selector
type RegionOption struct {
	Value    event.Region
	Label    string
	Selected bool
}

func regionOptions(selected event.Region) []RegionOption {
	opts := make([]RegionOption, len(event.Regions))
	for i, r := range event.Regions {
		opts[i] = RegionOption{Value: r, Label: r.Label(), Selected: r == selected}
	}
	return opts
}
