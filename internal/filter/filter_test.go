package filter

import (
	"testing"

	"github.com/pfrederiksen/regional-events/internal/compare"
	"github.com/pfrederiksen/regional-events/internal/event"
)

func window(title, start, end string) *event.Window {
	return &event.Window{Title: title, Start: event.MustParseDate(start), End: event.MustParseDate(end)}
}

func sampleTable() *compare.Table {
	return &compare.Table{
		Base:   event.Japan,
		Target: event.Korea,
		Rows: []compare.Row{
			{
				Index:  0,
				Kind:   compare.RowDated,
				Type:   event.TypeNormal,
				Base:   window("アルファ", "2023-01-01", "2023-01-08"),
				Target: window("알파", "2023-03-01", "2023-03-10"),
			},
			{
				Index:  1,
				Kind:   compare.RowDated,
				Type:   event.TypeChallenge,
				Base:   window("ベータ", "2023-01-12", "2023-01-19"),
				Target: window("베타", "2023-03-14", "2023-03-21"),
			},
			{
				Index:  2,
				Kind:   compare.RowPredicted,
				Type:   event.TypeChallenge,
				Base:   window("ガンマ Live", "2023-01-24", "2023-01-31"),
				Target: window("ガンマ Live", "2023-03-26", "2023-04-02"),
			},
		},
	}
}

func indexes(table *compare.Table) []int {
	out := make([]int, len(table.Rows))
	for i, row := range table.Rows {
		out[i] = row.Index
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   []int
	}{
		{
			name:   "empty filter",
			filter: NewFilter(),
			want:   []int{0, 1, 2},
		},
		{
			name:   "type",
			filter: &Filter{Types: []event.Type{event.TypeChallenge}},
			want:   []int{1, 2},
		},
		{
			name:   "kind predicted",
			filter: &Filter{Kind: compare.RowPredicted},
			want:   []int{2},
		},
		{
			name:   "kind dated",
			filter: &Filter{Kind: compare.RowDated},
			want:   []int{0, 1},
		},
		{
			name:   "from is inclusive",
			filter: &Filter{From: event.MustParseDate("2023-03-14")},
			want:   []int{1, 2},
		},
		{
			name:   "to is inclusive",
			filter: &Filter{To: event.MustParseDate("2023-03-14")},
			want:   []int{0, 1},
		},
		{
			name:   "target title",
			filter: &Filter{Titles: []string{"베타"}},
			want:   []int{1},
		},
		{
			name:   "base title case-insensitive",
			filter: &Filter{Titles: []string{"live"}},
			want:   []int{2},
		},
		{
			name:   "combined criteria",
			filter: &Filter{Types: []event.Type{event.TypeChallenge}, Kind: compare.RowDated},
			want:   []int{1},
		},
		{
			name:   "no match",
			filter: &Filter{Types: []event.Type{event.TypeMedley}},
			want:   []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := sampleTable()
			got := indexes(tt.filter.Apply(table))
			if !equalInts(got, tt.want) {
				t.Errorf("Apply() rows = %v, want %v", got, tt.want)
			}
			if len(table.Rows) != 3 {
				t.Error("Apply() should not modify the input table")
			}
		})
	}
}

func TestFilter_String(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{
			name:   "empty",
			filter: NewFilter(),
			want:   "No active filters",
		},
		{
			name: "all criteria",
			filter: &Filter{
				From:   event.MustParseDate("2024-01-01"),
				To:     event.MustParseDate("2024-03-31"),
				Types:  []event.Type{event.TypeChallenge, event.TypeTeam},
				Titles: []string{"live"},
				Kind:   compare.RowPredicted,
			},
			want: "From: 2024-01-01 | To: 2024-03-31 | Types: challenge, team | Titles: live | Predicted only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
