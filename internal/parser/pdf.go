package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/eternals/internal/doctext"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It reads text rows with the Go library
// first, then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctext.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc := &doctext.Document{Title: trimExt(filename, ".pdf")}

	pages, err := extractPDFRows(data)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	for i, page := range pages {
		doc.AddPage(i+1, page)
	}
	return doc, nil
}

// extractPDFRows returns one string per page with rows separated by
// newlines. A page that fails to decode yields an empty string.
func extractPDFRows(data []byte) ([]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	extracted := 0
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := pageRows(page)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		extracted++
		pages = append(pages, text)
	}
	if numPages > 0 && extracted == 0 {
		return nil, fmt.Errorf("no readable pages in %d", numPages)
	}
	return pages, nil
}

// pageRows joins the glyph runs of each visual row into one line.
func pageRows(page pdflib.Page) (text string, err error) {
	// The library panics on some malformed font programs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("read page rows: %v", rec)
		}
	}()

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	for i, row := range rows {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(rowLine(row.Content))
	}
	return buf.String(), nil
}

// rowLine concatenates glyph runs left to right, inserting a space where
// the horizontal gap is wider than a fraction of the font size.
func rowLine(texts pdflib.TextHorizontal) string {
	var buf strings.Builder
	var end float64
	for i, t := range texts {
		if i > 0 {
			gap := t.X - end
			threshold := t.FontSize * 0.2
			if threshold < 1 {
				threshold = 1
			}
			if gap > threshold && !strings.HasSuffix(buf.String(), " ") && !strings.HasPrefix(t.S, " ") {
				buf.WriteString(" ")
			}
		}
		buf.WriteString(t.S)
		end = t.X + t.W
	}
	return strings.TrimSpace(buf.String())
}

func extractPdftotext(data []byte) ([]string, error) {
	// pdftotext needs a path, so write to a temp file.
	tmp, err := os.CreateTemp("", "eternals-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
