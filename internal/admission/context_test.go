package admission

import "testing"

func TestClassify(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		line string
		want LineKind
	}{
		{"", KindBlank},
		{"    ", KindBlank},
		{"------", KindDivider},
		{"=== ===", KindDivider},
		{"--", KindOther},
		{"COLL :: C001 - Example College", KindCollegeHeader},
		{"  CRS :: CS01 - Computer Science  ", KindCourseHeader},
		{"1 240000000001 95.50 JOHN DOE OU OC M  NS-1-P1", KindOther},
		{"COLLEGE WISE ALLOTMENT", KindOther},
	}
	for _, tc := range tests {
		if got := Classify(tc.line, rules); got != tc.want {
			t.Errorf("Classify(%q) = %d, want %d", tc.line, got, tc.want)
		}
	}
}

func TestSplitHeader(t *testing.T) {
	tests := []struct {
		body, code, name string
	}{
		{"C001 - Example College", "C001", "Example College"},
		{" C002 - A - B ", "C002", "A - B"},
		{"C003", "C003", ""},
		{"C004-Hyphenated", "C004-Hyphenated", ""},
	}
	for _, tc := range tests {
		code, name := SplitHeader(tc.body, " - ")
		if code != tc.code || name != tc.name {
			t.Errorf("SplitHeader(%q) = (%q, %q), want (%q, %q)", tc.body, code, name, tc.code, tc.name)
		}
	}
}

func TestCollegeHeader_KeepsCourseFields(t *testing.T) {
	rules := DefaultRules()
	c := Context{CourseCode: "CS01", CourseName: "Computer Science", SeenCourse: true, State: InCourseSection}

	c.applyHeader(KindCollegeHeader, "COLL :: C009 - Other College", rules, false)
	if c.CollegeCode != "C009" || c.CollegeName != "Other College" {
		t.Errorf("college fields not set: %+v", c)
	}
	if c.CourseCode != "CS01" || c.CourseName != "Computer Science" {
		t.Errorf("course fields altered by college header: %+v", c)
	}
	if c.State != InCollegeSection {
		t.Errorf("expected %s, got %s", InCollegeSection, c.State)
	}
}

func TestCollegeHeader_ResetCourseOption(t *testing.T) {
	rules := DefaultRules()
	c := Context{CourseCode: "CS01", CourseName: "Computer Science", SeenCourse: true}

	c.applyHeader(KindCollegeHeader, "COLL :: C009", rules, true)
	if c.CollegeCode != "C009" || c.CollegeName != "" {
		t.Errorf("unexpected college fields: %+v", c)
	}
	if c.CourseCode != "" || c.CourseName != "" || c.SeenCourse {
		t.Errorf("expected course fields reset: %+v", c)
	}
}

func TestCourseHeader_KeepsCollegeFields(t *testing.T) {
	rules := DefaultRules()
	c := Context{}
	c.applyHeader(KindCollegeHeader, "COLL :: C001 - Example College", rules, false)

	for _, line := range []string{"CRS :: CS01 - Computer Science", "CRS :: EC01 - Electronics", "CRS :: ME01"} {
		c.applyHeader(KindCourseHeader, line, rules, false)
		if c.CollegeCode != "C001" || c.CollegeName != "Example College" {
			t.Errorf("college fields changed after %q: %+v", line, c)
		}
		if c.State != InCourseSection {
			t.Errorf("expected %s after %q, got %s", InCourseSection, line, c.State)
		}
	}
	if c.CourseCode != "ME01" || c.CourseName != "" {
		t.Errorf("expected last course header to win, got %+v", c)
	}
}

func TestTableFinalize(t *testing.T) {
	tbl := &Table{}
	for _, rank := range []string{"1", "RANK", "2", "Rank", " rank ", "3"} {
		tbl.Append(Record{Rank: rank})
	}
	if removed := tbl.Finalize(); removed != 3 {
		t.Errorf("expected 3 rows removed, got %d", removed)
	}
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 rows left, got %d", tbl.Len())
	}
	for i, want := range []string{"1", "2", "3"} {
		if tbl.Records[i].Rank != want {
			t.Errorf("row %d: expected rank %q, got %q", i, want, tbl.Records[i].Rank)
		}
	}
}

func TestTableRows_ColumnOrder(t *testing.T) {
	tbl := &Table{}
	tbl.Append(Record{CollegeCode: "C001", Rank: "1", Admission: "NS-1-P1"})
	rows := tbl.Rows()
	if len(rows) != 1 || len(rows[0]) != len(Columns) {
		t.Fatalf("unexpected shape: %v", rows)
	}
	if rows[0][0] != "C001" || rows[0][4] != "1" || rows[0][13] != "NS-1-P1" {
		t.Errorf("unexpected row: %v", rows[0])
	}
	h := tbl.Header()
	h[0] = "mutated"
	if Columns[0] != "College Code" {
		t.Error("Header returned the shared slice")
	}
}
