package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads a table from an XLSX file. The first sheet is used
// when sheet is empty.
func ParseWorkbook(path, sheet string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("importer: opening workbook: %w", err)
	}
	defer f.Close()
	return workbookTable(f, sheet)
}

// ReadWorkbook is ParseWorkbook for an XLSX stream.
func ReadWorkbook(r io.Reader, sheet string) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("importer: opening workbook: %w", err)
	}
	defer f.Close()
	return workbookTable(f, sheet)
}

func workbookTable(f *excelize.File, sheet string) (Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, ErrNoHeader
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("importer: reading sheet %q: %w", sheet, err)
	}
	return newTable(rows)
}
