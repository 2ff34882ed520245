package importer

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mgilbir/barsmith/chart"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		in      string
		numeric bool
		num     float64
		text    string
	}{
		{"10", true, 10, "10"},
		{" 2.5 ", true, 2.5, "2.5"},
		{"-3e2", true, -300, "-3e2"},
		{"abc", false, 0, "abc"},
		{"", false, 0, ""},
		{"12px", false, 0, "12px"},
	}
	for _, tt := range tests {
		c := ParseCell(tt.in)
		if c.Numeric != tt.numeric || c.Number != tt.num || c.Text != tt.text {
			t.Errorf("ParseCell(%q) = %+v", tt.in, c)
		}
	}
}

func TestParseDelimitedTable(t *testing.T) {
	table, err := ParseDelimitedTable(strings.NewReader(CSVTemplate))
	if err != nil {
		t.Fatalf("ParseDelimitedTable: %v", err)
	}
	if got := strings.Join(table.Headers, ","); got != "Name,Value1,Value2" {
		t.Errorf("Headers = %s", got)
	}
	if len(table.Rows) != 4 {
		t.Fatalf("len(Rows) = %d, want 4", len(table.Rows))
	}
	if c := table.Rows[2][1]; !c.Numeric || c.Number != 30 {
		t.Errorf("C.Value1 = %+v, want 30", c)
	}
	if c := table.Rows[0][0]; c.Numeric || c.Text != "A" {
		t.Errorf("A.Name = %+v", c)
	}
}

func TestParseDelimitedTableLenient(t *testing.T) {
	in := "Name , Value\n\"A\", 10\nB\n\nC, x\"y\n"
	table, err := ParseDelimitedTable(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseDelimitedTable: %v", err)
	}
	if got := strings.Join(table.Headers, "|"); got != "Name|Value" {
		t.Errorf("Headers = %s", got)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3 (blank line dropped)", len(table.Rows))
	}
	if c := table.Rows[0][1]; c.Number != 10 {
		t.Errorf("A.Value = %+v", c)
	}
	if c := table.Rows[1][1]; c.Numeric || c.Text != "" {
		t.Errorf("short row should be padded, got %+v", c)
	}
	if c := table.Rows[2][1]; c.Text != "xy" {
		t.Errorf("stray quotes should be removed, got %q", c.Text)
	}
}

func TestParseDelimitedTableErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrNoHeader},
		{"blank lines", "\n\n", ErrNoHeader},
		{"header only", "Name,Value\n", ErrNoRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDelimitedTable(strings.NewReader(tt.in))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTableBars(t *testing.T) {
	table, err := ParseDelimitedTable(strings.NewReader("Name,Value1,Value2\nA,10,20\nB,n/a,30\n"))
	if err != nil {
		t.Fatal(err)
	}

	bars, err := table.Bars("")
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d", len(bars))
	}
	if v, _ := bars[0].Value.Float(); bars[0].Name != "A" || v != 10 {
		t.Errorf("bars[0] = %s %v", bars[0].Name, v)
	}
	if v, _ := bars[1].Value.Float(); v != 0 {
		t.Errorf("non-numeric value should become 0, got %v", v)
	}

	stacked, err := table.Bars("Name", "Value1", "Value2")
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if stacked[0].Value.Kind() != chart.ValueStacked {
		t.Fatalf("expected a stacked value")
	}
	if got := stacked[1].Value.Entries(); len(got) != 2 || got[0] != 0 || got[1] != 30 {
		t.Errorf("entries = %v, want [0 30]", got)
	}

	if _, err := table.Bars("Missing"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("err = %v, want ErrUnknownColumn", err)
	}
	if _, err := table.Bars("Name", "Nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("err = %v, want ErrUnknownColumn", err)
	}
}

func TestTableBarsNeedsTwoColumns(t *testing.T) {
	table := Table{Headers: []string{"Name"}, Rows: [][]Cell{{ParseCell("A")}}}
	if _, err := table.Bars(""); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("err = %v, want ErrUnknownColumn", err)
	}
}

func TestRecords(t *testing.T) {
	table, err := ParseDelimitedTable(strings.NewReader("Name,Value\nA,1.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	recs := table.Records()
	if recs[0]["Name"] != "A" || recs[0]["Value"] != 1.5 {
		t.Errorf("Records = %v", recs)
	}
}

func TestParseStyleDocument(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		theme string
		bg    string
	}{
		{"template", StyleTemplate, "nature", "transparent"},
		{"defaults", "<styles></styles>", "default", "transparent"},
		{"not xml", "theme: <theme>ieee</theme> <background-color>#fff</background-color>", "ieee", "#fff"},
		{"first match", "<theme>cell</theme><theme>plos</theme>", "cell", "transparent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseStyleDocument(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("ParseStyleDocument: %v", err)
			}
			if s.Theme != tt.theme || s.BackgroundColor != tt.bg {
				t.Errorf("got %+v, want theme %q bg %q", s, tt.theme, tt.bg)
			}
		})
	}
}

func TestStyleApply(t *testing.T) {
	base := chart.Default()
	base.Style.BackgroundColor = "#eee"

	got := Style{Theme: "science"}.Apply(base)
	if got.Style.Theme != "science" || got.Style.BackgroundColor != "#eee" {
		t.Errorf("Apply = %+v", got.Style)
	}
	if base.Style.Theme == "science" {
		t.Error("Apply must not modify its input")
	}
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Gene", "Control", "Treated"},
		{"GAPDH", 45.2, 50},
		{"ACTB", 38.7, 41},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	table, err := ReadWorkbook(buf, "")
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if got := strings.Join(table.Headers, ","); got != "Gene,Control,Treated" {
		t.Errorf("Headers = %s", got)
	}
	bars, err := table.Bars("Gene", "Treated")
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if v, _ := bars[1].Value.Float(); bars[1].Name != "ACTB" || v != 41 {
		t.Errorf("bars[1] = %s %v", bars[1].Name, v)
	}
	if c := table.Rows[0][1]; math.Abs(c.Number-45.2) > 1e-9 {
		t.Errorf("GAPDH.Control = %+v", c)
	}
}

func TestParseWorkbookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	f.NewSheet("Results")
	f.SetCellValue("Results", "A1", "Name")
	f.SetCellValue("Results", "B1", "Value")
	f.SetCellValue("Results", "A2", "X")
	f.SetCellValue("Results", "B2", 7)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	table, err := ParseWorkbook(path, "Results")
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0][1].Number != 7 {
		t.Errorf("table = %+v", table)
	}

	if _, err := ParseWorkbook(path, "Missing"); err == nil {
		t.Error("expected an error for a missing sheet")
	}
	// The default sheet is empty.
	if _, err := ParseWorkbook(path, ""); !errors.Is(err, ErrNoHeader) {
		t.Errorf("err = %v, want ErrNoHeader", err)
	}
}
