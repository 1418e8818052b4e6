package admission

import (
	"fmt"
	"log/slog"
	"strings"
)

// Precondition decides when data lines become eligible for extraction.
type Precondition string

const (
	// RequireAnyHeader accepts rows once any header has been seen.
	RequireAnyHeader Precondition = "any-header"
	// RequireCourse accepts rows once a course header has been seen.
	RequireCourse Precondition = "course"
	// RequireCollegeAndCourse needs both a college and a course header.
	RequireCollegeAndCourse Precondition = "college-and-course"
)

// ParsePrecondition resolves a precondition name. Empty means any-header.
func ParsePrecondition(s string) (Precondition, error) {
	switch Precondition(strings.ToLower(strings.TrimSpace(s))) {
	case "", RequireAnyHeader:
		return RequireAnyHeader, nil
	case RequireCourse:
		return RequireCourse, nil
	case RequireCollegeAndCourse:
		return RequireCollegeAndCourse, nil
	}
	return "", fmt.Errorf("unknown precondition %q", s)
}

// Options configures a Parser.
type Options struct {
	Mode         Mode         `json:"mode"`
	Precondition Precondition `json:"precondition"`
	// Buffering merges a rejected candidate fragment with the next line.
	Buffering bool `json:"buffering"`
	// ResetCourseOnCollege clears the course fields on a college header.
	ResetCourseOnCollege bool `json:"reset_course_on_college"`
}

// Outcome is the kind of result a single line produced.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeHeader
	OutcomeAccepted
	OutcomeRejected
	OutcomeBuffered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeHeader:
		return "header"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeBuffered:
		return "buffered"
	}
	return "unknown"
}

// LineResult is what one physical line produced.
type LineResult struct {
	Outcome Outcome
	Record  Record
	Reason  string
	Line    string
}

// Skip is one entry of the run's diagnostic log.
type Skip struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Stats counts line outcomes for one run.
type Stats struct {
	Lines    int `json:"lines"`
	Headers  int `json:"headers"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Buffered int `json:"buffered"`
	Merged   int `json:"merged"`
	Filtered int `json:"filtered"`

	// InheritedCourse counts rows emitted under a college header that had
	// no course header of its own.
	InheritedCourse int `json:"inherited_course"`
}

// Result is the output of a parse run.
type Result struct {
	Table *Table `json:"table"`
	Skips []Skip `json:"skips"`
	Stats Stats  `json:"stats"`
}

// Parser turns admission-list text lines into a Table.
type Parser struct {
	rules *Rules
	opts  Options
	log   *slog.Logger
}

// NewParser creates a parser. A nil rules uses DefaultRules and a nil
// logger discards output.
func NewParser(rules *Rules, opts Options, log *slog.Logger) *Parser {
	if rules == nil {
		rules = DefaultRules()
	}
	if opts.Mode == "" {
		opts.Mode = ModePattern
	}
	if opts.Precondition == "" {
		opts.Precondition = RequireAnyHeader
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Parser{rules: rules, opts: opts, log: log}
}

// Options returns the parser's effective options.
func (p *Parser) Options() Options {
	return p.opts
}

// Parse runs one independent pass over lines.
func (p *Parser) Parse(lines []string) *Result {
	r := &run{p: p, res: &Result{Table: &Table{}, Skips: []Skip{}}}
	r.ctx.Reset()
	for i, line := range lines {
		lineNo := i + 1
		r.res.Stats.Lines++

		res := r.step(lineNo, line)
		switch res.Outcome {
		case OutcomeHeader:
			r.res.Stats.Headers++
		case OutcomeAccepted:
			r.res.Table.Append(res.Record)
			r.res.Stats.Accepted++
		case OutcomeBuffered:
			r.res.Stats.Buffered++
		case OutcomeRejected:
			r.res.Stats.Rejected++
			r.skip(lineNo, res.Line, res.Reason)
		}
	}
	r.dropPending("end of input")

	removed := r.res.Table.Finalize()
	r.res.Stats.Filtered = removed
	r.res.Stats.Accepted -= removed
	return r.res
}

// run holds the state owned by a single Parse call.
type run struct {
	p   *Parser
	ctx Context
	res *Result
}

// step advances the section state by one line and reports its outcome.
func (r *run) step(lineNo int, raw string) LineResult {
	line := strings.TrimSpace(raw)
	rules := r.p.rules

	kind := Classify(line, rules)
	switch kind {
	case KindBlank, KindDivider:
		return LineResult{Outcome: OutcomeIgnored, Line: line}
	case KindCollegeHeader, KindCourseHeader:
		r.dropPending("section changed")
		r.ctx.applyHeader(kind, line, rules, r.p.opts.ResetCourseOnCollege)
		return LineResult{Outcome: OutcomeHeader, Line: line}
	}

	if !r.eligible() {
		return LineResult{Outcome: OutcomeRejected, Reason: ReasonBeforeHeader, Line: line}
	}
	return r.process(lineNo, line)
}

// process handles one data line. A line that stands alone wins over a
// merge with the pending fragment.
func (r *run) process(lineNo int, line string) LineResult {
	res := r.p.extract(line, &r.ctx)
	if res.Outcome == OutcomeAccepted {
		r.dropPending("next line is a complete row")
		return r.accept(res, lineNo)
	}

	if r.ctx.Pending != "" {
		merged := r.p.extract(r.ctx.Pending+" "+line, &r.ctx)
		if merged.Outcome == OutcomeAccepted {
			start := r.ctx.PendingLine
			r.ctx.Pending, r.ctx.PendingLine = "", 0
			r.res.Stats.Merged++
			return r.accept(merged, start)
		}
		r.dropPending(merged.Reason)
	}

	if r.p.opts.Buffering && r.looksLikeRowStart(line) {
		r.ctx.Pending, r.ctx.PendingLine = line, lineNo
		r.p.log.Debug("buffered fragment", "line", lineNo, "reason", res.Reason)
		return LineResult{Outcome: OutcomeBuffered, Line: line, Reason: res.Reason}
	}
	return res
}

// accept stamps the source line on an accepted record and notes a course
// carried over from an earlier college.
func (r *run) accept(res LineResult, lineNo int) LineResult {
	res.Record.Line = lineNo
	if r.ctx.CourseInherited {
		r.res.Stats.InheritedCourse++
		r.p.log.Debug("row uses course from previous college", "line", lineNo,
			"college", r.ctx.CollegeCode, "course", r.ctx.CourseCode)
	}
	return res
}

func (p *Parser) extract(line string, ctx *Context) LineResult {
	tokens := strings.Fields(line)
	rec, reason := extractorFor(p.opts.Mode)(tokens, p.rules)
	if reason == "" {
		reason = Validate(rec, p.rules)
	}
	if reason != "" {
		return LineResult{Outcome: OutcomeRejected, Reason: reason, Line: line}
	}
	rec.CollegeCode = ctx.CollegeCode
	rec.CollegeName = ctx.CollegeName
	rec.CourseCode = ctx.CourseCode
	rec.CourseName = ctx.CourseName
	return LineResult{Outcome: OutcomeAccepted, Record: rec, Line: line}
}

// ExtractLine applies the parser's strategy and validation to a single line
// under the given context. It never mutates ctx.
func (p *Parser) ExtractLine(line string, ctx Context) LineResult {
	return p.extract(strings.TrimSpace(line), &ctx)
}

func (r *run) eligible() bool {
	c := &r.ctx
	switch r.p.opts.Precondition {
	case RequireCourse:
		return c.SeenCourse
	case RequireCollegeAndCourse:
		return c.SeenCollege && c.SeenCourse
	}
	return c.State != BeforeFirstHeader
}

// looksLikeRowStart reports whether a line begins with something the rank
// rule accepts, which is the only kind of fragment worth keeping.
func (r *run) looksLikeRowStart(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && r.p.rules.Match(FieldRank, fields[0])
}

func (r *run) dropPending(why string) {
	if r.ctx.Pending == "" {
		return
	}
	r.skip(r.ctx.PendingLine, r.ctx.Pending, ReasonFragmentDropped)
	r.p.log.Debug("dropped fragment", "line", r.ctx.PendingLine, "why", why)
	r.ctx.Pending, r.ctx.PendingLine = "", 0
}

func (r *run) skip(lineNo int, line, reason string) {
	r.res.Skips = append(r.res.Skips, Skip{Line: lineNo, Text: line, Reason: reason})
	r.p.log.Debug("skipped line", "line", lineNo, "reason", reason)
}
