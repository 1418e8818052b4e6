package doctext

import "strings"

// Document is the text of an uploaded file, split into pages of lines.
type Document struct {
	Title string  // Document title (from metadata or filename)
	Pages []*Page // Pages in source order
}

// Page is one page (or the whole body for formats without pages).
type Page struct {
	Number int      // 1-based page number (0 if N/A)
	Lines  []string // Physical text lines in reading order
}

// AddPage appends a page built from text split on line breaks. Pages with
// no text contribute nothing.
func (d *Document) AddPage(number int, text string) {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return
	}
	d.Pages = append(d.Pages, &Page{Number: number, Lines: lines})
}

// Lines flattens every page into a single ordered line list.
func (d *Document) Lines() []string {
	var out []string
	for _, p := range d.Pages {
		out = append(out, p.Lines...)
	}
	return out
}

// LineCount returns the total number of lines.
func (d *Document) LineCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Lines)
	}
	return n
}

// SplitLines splits text on \n, \r\n or \r and drops a trailing empty
// line. Interior blank lines are kept so line numbers stay meaningful.
func SplitLines(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
