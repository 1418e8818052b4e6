package admission

import "strings"

// Columns is the fixed output schema.
var Columns = []string{
	"College Code",
	"College Name",
	"Course Code",
	"Course Name",
	"Rank",
	"Roll Number",
	"Percentile",
	"Candidate Name",
	"Location",
	"Category",
	"Sex",
	"Minority",
	"PH",
	"Admission Details",
}

// Record is one candidate row together with its section context.
type Record struct {
	CollegeCode string `json:"college_code"`
	CollegeName string `json:"college_name"`
	CourseCode  string `json:"course_code"`
	CourseName  string `json:"course_name"`

	Rank       string `json:"rank"`
	RollNumber string `json:"roll_number"`
	Percentile string `json:"percentile"`
	Name       string `json:"candidate_name"`
	Location   string `json:"location"`
	Category   string `json:"category"`
	Sex        string `json:"sex"`
	Minority   string `json:"minority"`
	PH         string `json:"ph"`
	Admission  string `json:"admission_details"`

	Line int `json:"line"` // 1-based source line of the record start
}

// Values returns the record in Columns order.
func (r Record) Values() []string {
	return []string{
		r.CollegeCode,
		r.CollegeName,
		r.CourseCode,
		r.CourseName,
		r.Rank,
		r.RollNumber,
		r.Percentile,
		r.Name,
		r.Location,
		r.Category,
		r.Sex,
		r.Minority,
		r.PH,
		r.Admission,
	}
}

// Table accumulates accepted records in source order.
type Table struct {
	Records []Record `json:"records"`
}

// Append adds a record to the end of the table.
func (t *Table) Append(r Record) {
	t.Records = append(t.Records, r)
}

// Finalize drops rows whose rank is the literal header token RANK.
// It returns the number of rows removed.
func (t *Table) Finalize() int {
	kept := t.Records[:0]
	removed := 0
	for _, r := range t.Records {
		if strings.EqualFold(strings.TrimSpace(r.Rank), "RANK") {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	t.Records = kept
	return removed
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Records)
}

// Header returns a copy of the column names.
func (t *Table) Header() []string {
	return append([]string(nil), Columns...)
}

// Rows returns the table as string rows in Columns order.
func (t *Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, r.Values())
	}
	return rows
}
