package admission

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode names an extraction strategy.
type Mode string

const (
	ModePositional Mode = "positional"
	ModePattern    Mode = "pattern"
)

// ParseMode resolves a mode name. Empty means pattern.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePattern:
		return ModePattern, nil
	case ModePositional:
		return ModePositional, nil
	}
	return "", fmt.Errorf("unknown extraction mode %q", s)
}

// MinPositionalTokens is the smallest token count positional mode accepts:
// three leading fields, a one-word name and six trailing fields.
const MinPositionalTokens = 10

// Reason codes recorded for rejected and skipped lines.
const (
	ReasonTooFewTokens    = "too_few_tokens"
	ReasonNotCandidate    = "not_candidate"
	ReasonBeforeHeader    = "before_header"
	ReasonFragmentDropped = "fragment_dropped"
)

// FieldReason is the reason code for a field that failed its rule.
func FieldReason(f Field) string {
	return "field_invalid:" + string(f)
}

// extractFunc turns whitespace tokens into a record or a rejection reason.
type extractFunc func(tokens []string, rules *Rules) (Record, string)

func extractorFor(m Mode) extractFunc {
	if m == ModePositional {
		return extractPositional
	}
	return extractPattern
}

// extractPositional reads fixed offsets from both ends of the token list.
func extractPositional(tokens []string, _ *Rules) (Record, string) {
	n := len(tokens)
	if n < MinPositionalTokens {
		return Record{}, ReasonTooFewTokens
	}
	return Record{
		Rank:       tokens[0],
		RollNumber: tokens[1],
		Percentile: tokens[2],
		Name:       strings.Join(tokens[3:n-6], " "),
		Location:   tokens[n-6],
		Category:   tokens[n-5],
		Sex:        tokens[n-4],
		Minority:   tokens[n-3],
		PH:         tokens[n-2],
		Admission:  tokens[n-1],
	}, ""
}

// extractPattern applies the rules in order: three leading fields, then
// from the right the admission code, the optional PH and minority tokens,
// sex, category and location. What remains in the middle is the name.
func extractPattern(tokens []string, rules *Rules) (Record, string) {
	if len(tokens) == 0 {
		return Record{}, ReasonNotCandidate
	}
	if !rules.Match(FieldRank, tokens[0]) {
		return Record{}, ReasonNotCandidate
	}
	// rank roll percentile name location category sex admission
	if len(tokens) < 8 {
		return Record{}, ReasonTooFewTokens
	}

	var rec Record
	rec.Rank = tokens[0]
	if !rules.Match(FieldRollNumber, tokens[1]) {
		return Record{}, FieldReason(FieldRollNumber)
	}
	rec.RollNumber = tokens[1]
	if !rules.Match(FieldPercentile, tokens[2]) {
		return Record{}, FieldReason(FieldPercentile)
	}
	rec.Percentile = tokens[2]

	i := len(tokens) - 1
	if !rules.Match(FieldAdmission, tokens[i]) {
		return Record{}, FieldReason(FieldAdmission)
	}
	rec.Admission = tokens[i]
	i--

	if i > 3 && rules.Match(FieldPH, tokens[i]) {
		rec.PH = tokens[i]
		i--
	}
	if i > 3 && rules.Match(FieldMinority, tokens[i]) {
		rec.Minority = tokens[i]
		i--
	}

	// Sex, category and location still need a name token before them.
	if i < 6 {
		return Record{}, ReasonTooFewTokens
	}
	if !rules.Match(FieldSex, tokens[i]) {
		return Record{}, FieldReason(FieldSex)
	}
	rec.Sex = tokens[i]
	i--
	if !rules.Match(FieldCategory, tokens[i]) {
		return Record{}, FieldReason(FieldCategory)
	}
	rec.Category = tokens[i]
	i--
	if !rules.Match(FieldLocation, tokens[i]) {
		return Record{}, FieldReason(FieldLocation)
	}
	rec.Location = tokens[i]

	rec.Name = strings.Join(tokens[3:i], " ")
	return rec, ""
}

// Validate checks the required fields of rec against rules. It returns the
// reason code of the first failing field, or "" when rec is valid.
func Validate(rec Record, rules *Rules) string {
	if !rules.Match(FieldRank, rec.Rank) {
		return FieldReason(FieldRank)
	}
	if n, err := strconv.Atoi(rec.Rank); err == nil && (n < 1 || n > rules.MaxRank) {
		return FieldReason(FieldRank)
	}
	checks := []struct {
		field Field
		value string
	}{
		{FieldRollNumber, rec.RollNumber},
		{FieldPercentile, rec.Percentile},
		{FieldLocation, rec.Location},
		{FieldCategory, rec.Category},
		{FieldSex, rec.Sex},
		{FieldAdmission, rec.Admission},
	}
	for _, c := range checks {
		if !rules.Match(c.field, c.value) {
			return FieldReason(c.field)
		}
	}
	if strings.TrimSpace(rec.Name) == "" {
		return FieldReason(FieldName)
	}
	return ""
}
