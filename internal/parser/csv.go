package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/eternals/internal/doctext"
)

// CSVParser handles lists exported as CSV. Every record becomes one line
// with its non-empty cells joined by single spaces, so the line parser
// sees the same token stream it would get from a PDF row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctext.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &doctext.Document{Title: trimExt(filename, ".csv")}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		cells := make([]string, 0, len(rec))
		for _, cell := range rec {
			if c := strings.TrimSpace(cell); c != "" {
				cells = append(cells, c)
			}
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	doc.AddPage(0, strings.Join(lines, "\n"))
	return doc, nil
}
