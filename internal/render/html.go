package render

import (
	"embed"
	"html/template"
	"io"

	"github.com/pfrederiksen/regional-events/internal/compare"
	"github.com/pfrederiksen/regional-events/internal/event"
)

//go:embed templates/table.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/table.html"))

// HTMLRenderer writes a standalone page with the region selector and the table
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer creates a new HTMLRenderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{tmpl: pageTemplate}
}

type page struct {
	BaseLabel     string
	TargetLabel   string
	BaseOptions   []RegionOption
	TargetOptions []RegionOption
	Rows          []RowView
	Error         string
}

func (r *HTMLRenderer) Render(w io.Writer, table *compare.Table, opts Options) error {
	return r.tmpl.Execute(w, newPage(table.Base, table.Target, Views(table, opts), ""))
}

// RenderError writes the page with msg in place of the table
func (r *HTMLRenderer) RenderError(w io.Writer, base, target event.Region, msg string) error {
	return r.tmpl.Execute(w, newPage(base, target, nil, msg))
}

func newPage(base, target event.Region, rows []RowView, msg string) page {
	return page{
		BaseLabel:     base.Label(),
		TargetLabel:   target.Label(),
		BaseOptions:   regionOptions(base),
		TargetOptions: regionOptions(target),
		Rows:          rows,
		Error:         msg,
	}
}
