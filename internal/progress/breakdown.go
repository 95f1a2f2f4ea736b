package progress

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Breakdown counts outcomes per category for the end-of-run table.
// Categories are listed in the order they were first seen.
type Breakdown struct {
	columns []string
	order   []string
	counts  map[string][]int
}

// NewBreakdown creates a Breakdown with one count column per name
func NewBreakdown(columns ...string) *Breakdown {
	return &Breakdown{
		columns: columns,
		counts:  make(map[string][]int),
	}
}

// Add increments column of category. Out of range columns are ignored.
func (b *Breakdown) Add(category string, column int) {
	if column < 0 || column >= len(b.columns) {
		return
	}
	row, ok := b.counts[category]
	if !ok {
		row = make([]int, len(b.columns))
		b.counts[category] = row
		b.order = append(b.order, category)
	}
	row[column]++
}

// Count returns the value of column for category
func (b *Breakdown) Count(category string, column int) int {
	row, ok := b.counts[category]
	if !ok || column < 0 || column >= len(row) {
		return 0
	}
	return row[column]
}

// Render writes the table with a totals footer to out. Nothing is written
// for a nil out or an empty Breakdown.
func (b *Breakdown) Render(out io.Writer) {
	if out == nil || len(b.order) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)

	header := table.Row{"Category"}
	for _, c := range b.columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	totals := make([]int, len(b.columns))
	for _, category := range b.order {
		row := table.Row{category}
		for i, n := range b.counts[category] {
			row = append(row, n)
			totals[i] += n
		}
		t.AppendRow(row)
	}

	footer := table.Row{"Total"}
	for _, n := range totals {
		footer = append(footer, n)
	}
	t.AppendFooter(footer)
	t.Render()
}
