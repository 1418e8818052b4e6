// Package export writes tables as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a format name or file extension. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write encodes header and rows in format f.
func Write(w io.Writer, f Format, sheetName string, header []string, rows [][]string) error {
	if f == FormatCSV {
		return WriteCSV(w, header, rows)
	}
	return WriteXLSX(w, sheetName, header, rows)
}

// WriteCSV writes header followed by rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// DefaultSheetName is used when no sheet name is given.
const DefaultSheetName = "Sheet1"

// WriteXLSX writes a single-sheet workbook. Cells are written as strings so
// roll numbers and codes keep their leading zeros and full precision.
func WriteXLSX(w io.Writer, sheetName string, header []string, rows [][]string) error {
	sheetName = safeSheetName(sheetName)

	f := excelize.NewFile()
	defer f.Close()
	if sheetName != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheetName); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", cells(header), excelize.RowOpts{Height: 18}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = excelize.Cell{Value: v}
	}
	return out
}

// safeSheetName strips characters Excel forbids and truncates to 31 runes.
func safeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		return DefaultSheetName
	}
	return name
}
