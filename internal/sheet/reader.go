// Package sheet reads laboratory workbooks into raw rows and writes the
// organized workbook back out.
package sheet

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/labinv/internal/model"
)

// Options selects a sheet and the rows to read from it.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // leading rows that are not data
	HeaderRow  int    // 1-based row naming the columns; 0 for none
}

// Workbook is an opened .xlsx file.
type Workbook struct {
	path string
	f    *xlsx.File
}

// Open reads the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open file %s", path)
	}
	return &Workbook{path: path, f: f}, nil
}

// SheetNames lists the sheets in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.f.Sheets))
	for i, s := range w.f.Sheets {
		names[i] = s.Name
	}
	return names
}

// HasSheet reports whether the workbook contains a sheet called name.
func (w *Workbook) HasSheet(name string) bool {
	_, ok := w.f.Sheet[name]
	return ok
}

// Rows returns the data rows of the selected sheet. Row numbers are
// zero-based positions within the sheet, so skipped rows still count.
func (w *Workbook) Rows(opts Options) ([]model.RawRecord, error) {
	sheet, err := getSheet(w.f, opts)
	if err != nil {
		return nil, err
	}

	var header map[string]int
	if opts.HeaderRow > 0 {
		if opts.HeaderRow > len(sheet.Rows) {
			return nil, eris.Errorf("xlsx: header row %d beyond sheet %q (%d rows)", opts.HeaderRow, sheet.Name, len(sheet.Rows))
		}
		header = headerIndex(rowToStrings(sheet.Rows[opts.HeaderRow-1]))
	}

	var rows []model.RawRecord
	for i, row := range sheet.Rows {
		if i < opts.SkipRows || i == opts.HeaderRow-1 {
			continue
		}
		rows = append(rows, model.RawRecord{Row: i, Cells: rowToStrings(row), Header: header})
	}
	return rows, nil
}

// ReadRows opens path and returns the rows of one sheet.
func ReadRows(path string, opts Options) ([]model.RawRecord, error) {
	w, err := Open(path)
	if err != nil {
		return nil, err
	}
	return w.Rows(opts)
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

// headerIndex maps trimmed header text to its column. The first occurrence
// of a repeated name wins.
func headerIndex(cells []string) map[string]int {
	idx := make(map[string]int, len(cells))
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			continue
		}
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
