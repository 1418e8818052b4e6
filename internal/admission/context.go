package admission

import "strings"

// State is the section state of a parse run.
type State int

const (
	BeforeFirstHeader State = iota
	InCollegeSection
	InCourseSection
)

func (s State) String() string {
	switch s {
	case BeforeFirstHeader:
		return "before_first_header"
	case InCollegeSection:
		return "in_college_section"
	case InCourseSection:
		return "in_course_section"
	}
	return "unknown"
}

// LineKind classifies a trimmed line.
type LineKind int

const (
	KindOther LineKind = iota
	KindBlank
	KindDivider
	KindCollegeHeader
	KindCourseHeader
)

// Context is the mutable state carried across the lines of one run.
type Context struct {
	CollegeCode string
	CollegeName string
	CourseCode  string
	CourseName  string

	State       State
	SeenCollege bool
	SeenCourse  bool

	// CourseInherited is set while the course fields belong to an earlier
	// college.
	CourseInherited bool

	// Pending holds a rejected fragment awaiting the next line.
	Pending     string
	PendingLine int
}

// Reset returns the context to its start-of-run state.
func (c *Context) Reset() {
	*c = Context{}
}

// Classify reports what kind of line s is under rules.
func Classify(s string, rules *Rules) LineKind {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return KindBlank
	case isDivider(s):
		return KindDivider
	case strings.HasPrefix(s, rules.CollegeHeader):
		return KindCollegeHeader
	case strings.HasPrefix(s, rules.CourseHeader):
		return KindCourseHeader
	}
	return KindOther
}

// isDivider matches table rules such as "-----" or "=====".
func isDivider(s string) bool {
	if len(s) < 3 {
		return false
	}
	for _, r := range s {
		switch r {
		case '-', '=', '_', ' ':
		default:
			return false
		}
	}
	return true
}

// SplitHeader splits a header body into code and name on the first
// delimiter. Without the delimiter the whole body is the code.
func SplitHeader(body, delimiter string) (code, name string) {
	body = strings.TrimSpace(body)
	if i := strings.Index(body, delimiter); i >= 0 {
		return strings.TrimSpace(body[:i]), strings.TrimSpace(body[i+len(delimiter):])
	}
	return body, ""
}

// applyHeader updates the context for a header line. resetCourse clears
// the course fields when a new college starts.
func (c *Context) applyHeader(kind LineKind, line string, rules *Rules, resetCourse bool) {
	line = strings.TrimSpace(line)
	switch kind {
	case KindCollegeHeader:
		c.CollegeCode, c.CollegeName = SplitHeader(strings.TrimPrefix(line, rules.CollegeHeader), rules.HeaderDelimiter)
		c.SeenCollege = true
		if resetCourse {
			c.CourseCode, c.CourseName = "", ""
			c.SeenCourse = false
		}
		c.CourseInherited = c.CourseCode != ""
		c.State = InCollegeSection
	case KindCourseHeader:
		c.CourseCode, c.CourseName = SplitHeader(strings.TrimPrefix(line, rules.CourseHeader), rules.HeaderDelimiter)
		c.SeenCourse = true
		c.CourseInherited = false
		c.State = InCourseSection
	}
}
