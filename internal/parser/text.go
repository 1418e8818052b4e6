package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/eternals/internal/doctext"
)

// TextParser handles text already extracted from a PDF. Form feeds
// separate pages the way pdftotext writes them.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctext.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &doctext.Document{Title: trimExt(filename, ".txt")}
	page := 1
	var lines []string
	flush := func() {
		doc.AddPage(page, strings.Join(lines, "\n"))
		lines = nil
		page++
	}

	for scanner.Scan() {
		line := scanner.Text()
		for {
			i := strings.IndexByte(line, '\f')
			if i < 0 {
				break
			}
			lines = append(lines, line[:i])
			flush()
			line = line[i+1:]
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return doc, nil
}
