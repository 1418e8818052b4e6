package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/eternals/internal/doctext"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings and
// paragraphs keep their source lines; code blocks keep every line verbatim
// since lists are often pasted into fenced blocks.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctext.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &doctext.Document{Title: trimExt(filename, ".md", ".markdown")}

	var lines []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		lines = append(lines, blockLines(n, src)...)
	}

	doc.AddPage(0, strings.Join(lines, "\n"))
	return doc, nil
}

// blockLines returns the text lines of a top-level block.
func blockLines(n ast.Node, src []byte) []string {
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		return rawLines(n, src)
	case ast.KindList, ast.KindListItem, ast.KindBlockquote:
		var out []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = append(out, blockLines(c, src)...)
		}
		return out
	case ast.KindThematicBreak:
		return nil
	}
	return doctext.SplitLines(inlineText(n, src))
}

func rawLines(n ast.Node, src []byte) []string {
	segs := n.Lines()
	out := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(src)), "\r\n"))
	}
	return out
}

// inlineText gets the text content of a goldmark node, keeping soft and
// hard line breaks as newlines.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
