// Package sheet loads small tabular files (CSV and XLSX) into memory.
// The first non-empty row is the header row.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported sheet format")

// Table is a loaded sheet. Every row has exactly len(Headers) cells.
type Table struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// MissingColumnsError reports required columns absent from a sheet.
type MissingColumnsError struct {
	Sheet   string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("sheet %q is missing required columns: %s", e.Sheet, strings.Join(e.Missing, ", "))
}

// IsSupported reports whether filename has a loadable extension.
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// LoadFile opens path and loads it. sheetName selects the worksheet of an
// XLSX file; empty means the first one.
func LoadFile(path, sheetName string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, filepath.Base(path), sheetName)
}

// Load reads a sheet, choosing the format from the filename extension.
func Load(r io.Reader, filename, sheetName string) (*Table, error) {
	var (
		raw  [][]string
		name string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		raw, err = readCSV(r)
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	case ".xlsx":
		raw, name, err = readXLSX(r, sheetName)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return fromRows(name, raw), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readXLSX(r io.Reader, sheetName string) ([][]string, string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	if sheetName == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, "", errors.New("workbook has no sheets")
		}
		sheetName = list[0]
	}
	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, "", fmt.Errorf("sheet %q not found", sheetName)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, "", err
	}
	return rows, sheetName, nil
}

// fromRows picks the header row and squares every data row to its width.
// Data cells past the last header get generated "Column N" headers so no
// value is lost. Fully blank rows are dropped.
func fromRows(name string, raw [][]string) *Table {
	t := &Table{Name: name, Headers: []string{}, Rows: [][]string{}}
	start := 0
	for start < len(raw) && blank(raw[start]) {
		start++
	}
	if start == len(raw) {
		return t
	}
	for _, h := range raw[start] {
		t.Headers = append(t.Headers, strings.TrimSpace(h))
	}
	var data [][]string
	width := len(t.Headers)
	for _, row := range raw[start+1:] {
		if blank(row) {
			continue
		}
		data = append(data, row)
		width = max(width, lastFilled(row)+1)
	}
	for i := len(t.Headers); i < width; i++ {
		t.Headers = append(t.Headers, fmt.Sprintf("Column %d", i+1))
	}
	for _, row := range data {
		out := make([]string, width)
		copy(out, row)
		t.Rows = append(t.Rows, out)
	}
	return t
}

// lastFilled returns the index of the last non-blank cell, or -1.
func lastFilled(row []string) int {
	for i := len(row) - 1; i >= 0; i-- {
		if strings.TrimSpace(row[i]) != "" {
			return i
		}
	}
	return -1
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Column returns the index of the named column, or -1. Names are compared
// after trimming, ignoring case.
func (t *Table) Column(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// RequireColumns resolves every name to a column index. All missing names
// are reported together in a *MissingColumnsError.
func (t *Table) RequireColumns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = t.Column(n)
		if idx[i] < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Sheet: t.Name, Missing: missing}
	}
	return idx, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
