package sheet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoad_CSV(t *testing.T) {
	input := "\n State , Program,Fee\nTS,CSE,\"1,00,000\"\n,,\nAP,ECE\n"
	tbl, err := Load(strings.NewReader(input), "master.csv", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Name != "master" {
		t.Errorf("expected name %q, got %q", "master", tbl.Name)
	}
	if got := strings.Join(tbl.Headers, "|"); got != "State|Program|Fee" {
		t.Errorf("unexpected headers %q", got)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows (blank row dropped), got %d", tbl.Len())
	}
	if tbl.Rows[0][2] != "1,00,000" {
		t.Errorf("unexpected fee cell %q", tbl.Rows[0][2])
	}
	if len(tbl.Rows[1]) != 3 || tbl.Rows[1][2] != "" {
		t.Errorf("short row not padded: %q", tbl.Rows[1])
	}
}

func TestLoad_RowsWiderThanHeader(t *testing.T) {
	input := "State,Program\nTS,CSE,100000,note\nAP,ECE\nKA,CSE,90000,,\n"
	tbl, err := Load(strings.NewReader(input), "master.csv", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(tbl.Headers, "|"); got != "State|Program|Column 3|Column 4" {
		t.Errorf("unexpected headers %q", got)
	}
	for i, row := range tbl.Rows {
		if len(row) != len(tbl.Headers) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(tbl.Headers))
		}
	}
	if tbl.Rows[0][2] != "100000" || tbl.Rows[0][3] != "note" || tbl.Rows[2][2] != "90000" {
		t.Errorf("extra cells lost: %q", tbl.Rows)
	}
}

func xlsxBytes(t *testing.T, sheetName string, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestLoad_XLSX(t *testing.T) {
	data := xlsxBytes(t, "Colleges", [][]string{
		{"State", "Program"},
		{"TS", "CSE"},
		{"AP", "ECE"},
	})

	tbl, err := Load(bytes.NewReader(data), "master.xlsx", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Name != "Colleges" {
		t.Errorf("expected first sheet name, got %q", tbl.Name)
	}
	if tbl.Len() != 2 || tbl.Rows[1][1] != "ECE" {
		t.Errorf("unexpected rows %q", tbl.Rows)
	}

	if _, err := Load(bytes.NewReader(data), "master.xlsx", "Nope"); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	if err := os.WriteFile(path, []byte("A,B\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadFile(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("expected 1 row, got %d", tbl.Len())
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), ""); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load(strings.NewReader(""), "data.ods", "")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if IsSupported("data.ods") || !IsSupported("DATA.XLSX") {
		t.Error("IsSupported disagrees with Load")
	}
}

func TestRequireColumns(t *testing.T) {
	tbl := &Table{Name: "left", Headers: []string{"State", "Program Code"}}
	idx, err := tbl.RequireColumns("program code", " STATE ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx[0] != 1 || idx[1] != 0 {
		t.Errorf("unexpected indexes %v", idx)
	}

	_, err = tbl.RequireColumns("State", "Fee", "Group")
	var mce *MissingColumnsError
	if !errors.As(err, &mce) {
		t.Fatalf("expected *MissingColumnsError, got %v", err)
	}
	if mce.Sheet != "left" || strings.Join(mce.Missing, ",") != "Fee,Group" {
		t.Errorf("unexpected error contents: %+v", mce)
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	tbl, err := Load(strings.NewReader(""), "empty.csv", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tbl.Headers) != 0 || tbl.Len() != 0 {
		t.Errorf("expected empty table, got %+v", tbl)
	}
}
