package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestTextParser_Lines(t *testing.T) {
	input := "COLL :: C001 - Example College\nCRS :: CS01 - Computer Science\n\n1 240000000001 95.50 JOHN DOE OU OC M NS-1-P1\n"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "allotment.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "allotment" {
		t.Errorf("expected title %q, got %q", "allotment", doc.Title)
	}
	want := []string{
		"COLL :: C001 - Example College",
		"CRS :: CS01 - Computer Science",
		"",
		"1 240000000001 95.50 JOHN DOE OU OC M NS-1-P1",
	}
	if got := doc.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestTextParser_FormFeedPages(t *testing.T) {
	input := "page one a\npage one b\fpage two\n\f\fpage four"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "paged.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("expected 3 non-empty pages, got %d", len(doc.Pages))
	}
	wantNumbers := []int{1, 2, 4}
	for i, n := range wantNumbers {
		if doc.Pages[i].Number != n {
			t.Errorf("page[%d]: expected number %d, got %d", i, n, doc.Pages[i].Number)
		}
	}
	if doc.LineCount() != 4 {
		t.Errorf("expected 4 lines, got %d", doc.LineCount())
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("expected 0 pages for empty input, got %d", len(doc.Pages))
	}
}

func TestCSVParser_JoinsCells(t *testing.T) {
	input := "RANK,ROLL,PERC,NAME,LOC,CAT,SEX,MIN,PH,ADM\n1,240000000001,95.50,JOHN DOE,OU,OC,M,,,NS-1-P1\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "list.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "list" {
		t.Errorf("expected title %q, got %q", "list", doc.Title)
	}
	lines := doc.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != "1 240000000001 95.50 JOHN DOE OU OC M NS-1-P1" {
		t.Errorf("unexpected data line %q", lines[1])
	}
}

func TestCSVParser_RaggedRows(t *testing.T) {
	input := "COLL :: C001 - Example College\n1,2,3\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "ragged.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Lines(); len(got) != 2 || got[0] != "COLL :: C001 - Example College" {
		t.Errorf("unexpected lines %q", got)
	}
}

func TestHTMLParser_TableRows(t *testing.T) {
	input := `<html><head><title>Allotment</title><style>p{}</style></head><body>
<h2>COLL :: C001 - Example College</h2>
<p>CRS ::   CS01 - Computer Science</p>
<table>
<tr><th>RANK</th><th>ROLL</th></tr>
<tr><td>1</td><td>240000000001</td><td>95.50</td><td>JOHN  DOE</td></tr>
</table>
<script>var x = 1;</script>
</body></html>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "list.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Allotment" {
		t.Errorf("expected title %q, got %q", "Allotment", doc.Title)
	}
	want := []string{
		"COLL :: C001 - Example College",
		"CRS :: CS01 - Computer Science",
		"RANK ROLL",
		"1 240000000001 95.50 JOHN DOE",
	}
	if got := doc.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestMarkdownParser_Lines(t *testing.T) {
	input := "# COLL :: C001 - Example College\n\nCRS :: CS01 - Computer Science\n1 240000000001 95.50 JOHN DOE OU OC M NS-1-P1\n\n```\n2 240000000002 94.00 JANE ROE OU BCA F NS-2-P1\n```\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "list.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "list" {
		t.Errorf("expected title %q, got %q", "list", doc.Title)
	}
	want := []string{
		"COLL :: C001 - Example College",
		"CRS :: CS01 - Computer Science",
		"1 240000000001 95.50 JOHN DOE OU OC M NS-1-P1",
		"2 240000000002 94.00 JANE ROE OU BCA F NS-2-P1",
	}
	if got := doc.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"a.txt", false},
		{"A.PDF", false},
		{"a.docx", false},
		{"a.htm", false},
		{"a.markdown", false},
		{"a.xls", true},
		{"noext", true},
	}
	for _, tc := range tests {
		_, err := ForFile(tc.name, Options{})
		if (err != nil) != tc.wantErr {
			t.Errorf("ForFile(%q): err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
		if IsSupportedExtension(tc.name) == tc.wantErr {
			t.Errorf("IsSupportedExtension(%q) disagrees with ForFile", tc.name)
		}
	}
}

func TestTrimExt(t *testing.T) {
	if got := trimExt("List.PDF", ".pdf"); got != "List" {
		t.Errorf("expected %q, got %q", "List", got)
	}
	if got := trimExt("notes.md", ".txt"); got != "notes.md" {
		t.Errorf("expected unchanged name, got %q", got)
	}
}
