// Package importer turns tabular data and style documents into chart
// configuration fragments.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgilbir/barsmith/chart"
)

var (
	ErrNoHeader      = errors.New("importer: missing header row")
	ErrNoRows        = errors.New("importer: not enough data rows")
	ErrUnknownColumn = errors.New("importer: unknown column")
)

// CSVTemplate is a sample table with one name column and two value
// columns.
const CSVTemplate = `Name,Value1,Value2
A,10,20
B,20,30
C,30,40
D,25,35
`

// StyleTemplate is a sample style document.
const StyleTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<styles>
  <theme>nature</theme>
  <background-color>transparent</background-color>
</styles>
`

// Cell is one table value. Numeric is set when Text parses as a number.
type Cell struct {
	Text    string
	Number  float64
	Numeric bool
}

// ParseCell trims s and reads it as a number when possible.
func ParseCell(s string) Cell {
	s = strings.TrimSpace(s)
	c := Cell{Text: s}
	if s == "" {
		return c
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		c.Number, c.Numeric = f, true
	}
	return c
}

// Value returns the number for numeric cells and the text otherwise.
func (c Cell) Value() any {
	if c.Numeric {
		return c.Number
	}
	return c.Text
}

// Float returns the number, or 0 for non-numeric cells.
func (c Cell) Float() float64 {
	if c.Numeric {
		return c.Number
	}
	return 0
}

// Table is a header row plus data rows. Every row has one cell per header.
type Table struct {
	Headers []string
	Rows    [][]Cell
}

// Column returns the index of the named header.
func (t Table) Column(name string) (int, error) {
	for i, h := range t.Headers {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Records returns the rows as header-keyed maps.
func (t Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]any, len(t.Headers))
		for j, h := range t.Headers {
			rec[h] = row[j].Value()
		}
		out[i] = rec
	}
	return out
}

// Bars converts the table to chart bars. The name comes from nameCol and
// the value from valueCols: one column gives a scalar value, several give a
// stacked value. With no nameCol the first column is used, and with no
// valueCols the second. Non-numeric values count as 0.
func (t Table) Bars(nameCol string, valueCols ...string) ([]chart.Bar, error) {
	nameIdx := 0
	if nameCol != "" {
		i, err := t.Column(nameCol)
		if err != nil {
			return nil, err
		}
		nameIdx = i
	}

	var valueIdx []int
	for _, c := range valueCols {
		i, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		valueIdx = append(valueIdx, i)
	}
	if len(valueIdx) == 0 {
		if len(t.Headers) < 2 {
			return nil, fmt.Errorf("%w: need a name and a value column", ErrUnknownColumn)
		}
		valueIdx = []int{1}
	}

	bars := make([]chart.Bar, 0, len(t.Rows))
	for _, row := range t.Rows {
		b := chart.Bar{Name: row[nameIdx].Text}
		if len(valueIdx) == 1 {
			b.Value = chart.Scalar(row[valueIdx[0]].Float())
		} else {
			entries := make([]float64, len(valueIdx))
			for k, i := range valueIdx {
				entries[k] = row[i].Float()
			}
			b.Value = chart.Stacked(entries...)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// ParseDelimitedTable reads comma separated text with a header row.
// Fields are trimmed, stray quotes are tolerated and short rows are padded
// with empty cells.
func ParseDelimitedTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("importer: reading table: %w", err)
	}
	return newTable(records)
}

func newTable(records [][]string) (Table, error) {
	// Drop blank lines.
	kept := records[:0]
	for _, rec := range records {
		if !blank(rec) {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		return Table{}, ErrNoHeader
	}
	if len(kept) < 2 {
		return Table{}, ErrNoRows
	}

	t := Table{Headers: make([]string, len(kept[0]))}
	for i, h := range kept[0] {
		t.Headers[i] = strings.TrimSpace(strings.ReplaceAll(h, `"`, ""))
	}
	for _, rec := range kept[1:] {
		row := make([]Cell, len(t.Headers))
		for i := range row {
			if i < len(rec) {
				row[i] = ParseCell(strings.ReplaceAll(rec[i], `"`, ""))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Style is the result of a style document import.
type Style struct {
	Theme           string
	BackgroundColor string
}

var (
	themeTag      = regexp.MustCompile(`<theme>(.*?)</theme>`)
	backgroundTag = regexp.MustCompile(`<background-color>(.*?)</background-color>`)
)

// ParseStyleDocument extracts the first <theme> and <background-color>
// values from a flat style document. Missing tags default to "default" and
// "transparent". The document does not have to be well-formed XML.
func ParseStyleDocument(r io.Reader) (Style, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Style{}, fmt.Errorf("importer: reading style document: %w", err)
	}
	s := Style{Theme: "default", BackgroundColor: chart.Transparent}
	if m := themeTag.FindSubmatch(data); m != nil {
		s.Theme = string(m[1])
	}
	if m := backgroundTag.FindSubmatch(data); m != nil {
		s.BackgroundColor = string(m[1])
	}
	return s, nil
}

// Apply returns cfg with the imported theme and background. Empty values
// keep the current setting.
func (s Style) Apply(cfg chart.Config) chart.Config {
	out := cfg.Clone()
	if s.Theme != "" {
		out.Style.Theme = s.Theme
	}
	if s.BackgroundColor != "" {
		out.Style.BackgroundColor = s.BackgroundColor
	}
	return out
}
