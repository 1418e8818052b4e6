package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/eternals/internal/doctext"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Each paragraph and each table row
// becomes one line.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctext.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	d, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := &doctext.Document{Title: trimExt(filename, ".docx")}

	var lines []string
	for _, item := range d.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, docxParagraphText(it))
		case *docx.Table:
			for _, row := range it.TableRows {
				var cells []string
				for _, cell := range row.TableCells {
					var parts []string
					for _, para := range cell.Paragraphs {
						if t := docxParagraphText(para); t != "" {
							parts = append(parts, t)
						}
					}
					cells = append(cells, strings.Join(parts, " "))
				}
				lines = append(lines, strings.Join(cells, " "))
			}
		}
	}

	doc.AddPage(0, strings.Join(lines, "\n"))
	return doc, nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
