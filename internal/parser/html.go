package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/eternals/internal/doctext"
	"golang.org/x/net/html"
)

// HTMLParser handles admission lists published as web pages. Table rows
// become one line each with cells separated by spaces.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctext.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctext.Document{Title: trimExt(filename, ".html", ".htm")}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "head":
				return
			case "tr":
				var cells []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
						cells = append(cells, textContent(c))
					}
				}
				lines = append(lines, strings.Join(cells, " "))
				return
			case "pre":
				lines = append(lines, doctext.SplitLines(rawText(n))...)
				return
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "li":
				if t := textContent(n); t != "" {
					lines = append(lines, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	doc.AddPage(0, strings.Join(lines, "\n"))
	return doc, nil
}

// textContent returns the node's text with whitespace runs collapsed.
func textContent(n *html.Node) string {
	return strings.Join(strings.Fields(rawText(n)), " ")
}

func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
