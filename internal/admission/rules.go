package admission

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field names a CandidateRecord field governed by a rule.
type Field string

const (
	FieldRank       Field = "rank"
	FieldRollNumber Field = "roll_number"
	FieldPercentile Field = "percentile"
	FieldName       Field = "name"
	FieldLocation   Field = "location"
	FieldCategory   Field = "category"
	FieldSex        Field = "sex"
	FieldMinority   Field = "minority"
	FieldPH         Field = "ph"
	FieldAdmission  Field = "admission"
)

// Default rule patterns. Every one of them can be overridden by a rules file.
const (
	DefaultRankPattern       = `^\d{1,6}$`
	DefaultRollPattern       = `^2\d{11}$`
	DefaultPercentilePattern = `^\d{1,3}\.\d+$`
	DefaultLocationPattern   = `^\S+$`
	DefaultCategoryPattern   = `^(?:OC|EWS|BCA|BCB|BCC|BCD|BCE|SC|ST)$`
	DefaultSexPattern        = `^[FM]$`
	DefaultMinorityPattern   = `^MIN$`
	DefaultPHPattern         = `^PH$`
	DefaultAdmissionPattern  = `^(?:NS|SS)\S*-(?:P1|P2|P3|P4)$`

	DefaultCollegeHeader   = "COLL ::"
	DefaultCourseHeader    = "CRS ::"
	DefaultHeaderDelimiter = " - "
	DefaultMaxRank         = 999999
)

// Rules is the declarative rule table shared by every extraction strategy.
type Rules struct {
	Patterns map[Field]*regexp.Regexp

	CollegeHeader   string
	CourseHeader    string
	HeaderDelimiter string
	MaxRank         int
}

// RuleError reports a bad rule override.
type RuleError struct {
	Key    string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.Key, e.Reason)
}

var patternKeys = map[string]Field{
	"rank":        FieldRank,
	"roll_number": FieldRollNumber,
	"percentile":  FieldPercentile,
	"location":    FieldLocation,
	"category":    FieldCategory,
	"sex":         FieldSex,
	"minority":    FieldMinority,
	"ph":          FieldPH,
	"admission":   FieldAdmission,
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *Rules {
	return &Rules{
		Patterns: map[Field]*regexp.Regexp{
			FieldRank:       regexp.MustCompile(DefaultRankPattern),
			FieldRollNumber: regexp.MustCompile(DefaultRollPattern),
			FieldPercentile: regexp.MustCompile(DefaultPercentilePattern),
			FieldLocation:   regexp.MustCompile(DefaultLocationPattern),
			FieldCategory:   regexp.MustCompile(DefaultCategoryPattern),
			FieldSex:        regexp.MustCompile(DefaultSexPattern),
			FieldMinority:   regexp.MustCompile(DefaultMinorityPattern),
			FieldPH:         regexp.MustCompile(DefaultPHPattern),
			FieldAdmission:  regexp.MustCompile(DefaultAdmissionPattern),
		},
		CollegeHeader:   DefaultCollegeHeader,
		CourseHeader:    DefaultCourseHeader,
		HeaderDelimiter: DefaultHeaderDelimiter,
		MaxRank:         DefaultMaxRank,
	}
}

// Match reports whether value satisfies the rule for field.
// Fields without a rule accept any non-empty value.
func (r *Rules) Match(field Field, value string) bool {
	re, ok := r.Patterns[field]
	if !ok {
		return value != ""
	}
	return re.MatchString(value)
}

// WithOverrides returns a copy of r with the given key/pattern pairs applied.
func (r *Rules) WithOverrides(overrides map[string]string) (*Rules, error) {
	out := &Rules{
		Patterns:        make(map[Field]*regexp.Regexp, len(r.Patterns)),
		CollegeHeader:   r.CollegeHeader,
		CourseHeader:    r.CourseHeader,
		HeaderDelimiter: r.HeaderDelimiter,
		MaxRank:         r.MaxRank,
	}
	for f, re := range r.Patterns {
		out.Patterns[f] = re
	}

	// Sorted so the first reported error is stable.
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := overrides[key]
		if field, ok := patternKeys[key]; ok {
			re, err := regexp.Compile(value)
			if err != nil {
				return nil, &RuleError{Key: key, Reason: err.Error()}
			}
			out.Patterns[field] = re
			continue
		}
		switch key {
		case "college_header":
			if strings.TrimSpace(value) == "" {
				return nil, &RuleError{Key: key, Reason: "must not be empty"}
			}
			out.CollegeHeader = strings.TrimSpace(value)
		case "course_header":
			if strings.TrimSpace(value) == "" {
				return nil, &RuleError{Key: key, Reason: "must not be empty"}
			}
			out.CourseHeader = strings.TrimSpace(value)
		case "header_delimiter":
			if value == "" {
				return nil, &RuleError{Key: key, Reason: "must not be empty"}
			}
			out.HeaderDelimiter = value
		case "max_rank":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n <= 0 {
				return nil, &RuleError{Key: key, Reason: "must be a positive integer"}
			}
			out.MaxRank = n
		default:
			return nil, &RuleError{Key: key, Reason: "unknown rule"}
		}
	}
	return out, nil
}

// LoadRules reads a YAML file of key/pattern pairs and applies it on top
// of the default rules. An empty path returns the defaults.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML key/pattern pairs and applies them on top of the
// default rules.
func ParseRules(data []byte) (*Rules, error) {
	overrides := map[string]string{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	return DefaultRules().WithOverrides(overrides)
}
