// Package report renders a parse run summary as Markdown and HTML.
package report

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dgallion1/eternals/internal/admission"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MaxSkipsListed caps the skip table in a summary.
const MaxSkipsListed = 50

// Summary is everything a run report shows.
type Summary struct {
	Title   string
	Options admission.Options
	Pages   int
	Result  *admission.Result
}

// Markdown writes the summary as GitHub-flavoured Markdown.
func Markdown(w io.Writer, s Summary) error {
	var b strings.Builder
	title := s.Title
	if title == "" {
		title = "Admission list"
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))
	fmt.Fprintf(&b, "Mode **%s**, precondition **%s**, buffering **%t**.\n\n",
		s.Options.Mode, s.Options.Precondition, s.Options.Buffering)

	st := s.Result.Stats
	b.WriteString("## Lines\n\n| Outcome | Count |\n|---|---:|\n")
	for _, r := range []struct {
		name string
		n    int
	}{
		{"Pages", s.Pages},
		{"Lines", st.Lines},
		{"Headers", st.Headers},
		{"Accepted", st.Accepted},
		{"Merged", st.Merged},
		{"Rejected", st.Rejected},
		{"Buffered", st.Buffered},
		{"Header rows removed", st.Filtered},
	} {
		fmt.Fprintf(&b, "| %s | %d |\n", r.name, r.n)
	}

	if st.InheritedCourse > 0 {
		fmt.Fprintf(&b, "\n> **Warning:** %d rows appeared under a college header before its first course header and carry the previous college's course.\n", st.InheritedCourse)
	}

	if sections := sectionCounts(s.Result.Table); len(sections) > 0 {
		b.WriteString("\n## Sections\n\n| College | Course | Rows |\n|---|---|---:|\n")
		for _, sec := range sections {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", escape(sec.college), escape(sec.course), sec.rows)
		}
	}

	if len(s.Result.Skips) > 0 {
		reasons := make(map[string]int)
		for _, sk := range s.Result.Skips {
			reasons[sk.Reason]++
		}
		b.WriteString("\n## Skip reasons\n\n| Reason | Count |\n|---|---:|\n")
		for _, r := range slices.Sorted(maps.Keys(reasons)) {
			fmt.Fprintf(&b, "| `%s` | %d |\n", r, reasons[r])
		}

		b.WriteString("\n## Skipped lines\n\n| Line | Reason | Text |\n|---:|---|---|\n")
		for i, sk := range s.Result.Skips {
			if i == MaxSkipsListed {
				fmt.Fprintf(&b, "\n_%d more not shown._\n", len(s.Result.Skips)-MaxSkipsListed)
				break
			}
			fmt.Fprintf(&b, "| %d | `%s` | %s |\n", sk.Line, sk.Reason, escape(sk.Text))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// HTML renders the Markdown summary to a standalone HTML page.
func HTML(w io.Writer, s Summary) error {
	var md bytes.Buffer
	if err := Markdown(&md, s); err != nil {
		return err
	}
	var body bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Parse report</title></head><body>\n%s</body></html>\n", body.String())
	return err
}

type section struct {
	college, course string
	rows            int
}

// sectionCounts counts rows per college/course pair in first-seen order.
func sectionCounts(t *admission.Table) []section {
	if t == nil {
		return nil
	}
	var out []section
	pos := make(map[[2]string]int)
	for _, r := range t.Records {
		k := [2]string{joinCode(r.CollegeCode, r.CollegeName), joinCode(r.CourseCode, r.CourseName)}
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, section{college: k[0], course: k[1]})
		}
		out[i].rows++
	}
	return out
}

func joinCode(code, name string) string {
	return cmp.Or(strings.TrimSpace(code+" "+name), "-")
}

// escape keeps table cells from breaking the Markdown table layout.
func escape(s string) string {
	r := strings.NewReplacer("|", `\|`, "\n", " ", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
