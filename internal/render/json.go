package render

import (
	"encoding/json"
	"io"

	"github.com/pfrederiksen/regional-events/internal/compare"
)

// JSONRenderer writes the table as indented JSON
type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, table *compare.Table, opts Options) error {
	out := *table
	if !opts.OldestFirst {
		out.Rows = table.Reversed()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(&out)
}
