// Package compare diffs two sheets on a derived MAIN CODE key.
package compare

import (
	"fmt"
	"strings"

	"github.com/dgallion1/eternals/internal/sheet"
)

// MainCodeColumn is the name of the derived key column in diff output.
const MainCodeColumn = "MAIN CODE"

// MainCode concatenates the trimmed key values.
func MainCode(key1, key2 string) string {
	return strings.TrimSpace(key1) + strings.TrimSpace(key2)
}

// Result is the two-way set difference of two sheets.
type Result struct {
	Key1      string       `json:"key1"`
	Key2      string       `json:"key2"`
	OnlyLeft  *sheet.Table `json:"only_left"`
	OnlyRight *sheet.Table `json:"only_right"`
	Common    int          `json:"common"`
}

// Diff returns rows of left whose MAIN CODE is absent from right, rows of
// right absent from left, and the number of distinct codes present in both.
// Output rows carry the MAIN CODE as their first column.
func Diff(left, right *sheet.Table, key1, key2 string) (*Result, error) {
	lc, err := codes(left, key1, key2)
	if err != nil {
		return nil, fmt.Errorf("left: %w", err)
	}
	rc, err := codes(right, key1, key2)
	if err != nil {
		return nil, fmt.Errorf("right: %w", err)
	}

	inRight := make(map[string]bool, len(rc))
	for _, c := range rc {
		inRight[c] = true
	}
	inLeft := make(map[string]bool, len(lc))
	for _, c := range lc {
		inLeft[c] = true
	}

	res := &Result{
		Key1:      key1,
		Key2:      key2,
		OnlyLeft:  withCode(left),
		OnlyRight: withCode(right),
	}
	common := make(map[string]bool)
	for i, c := range lc {
		if inRight[c] {
			common[c] = true
			continue
		}
		res.OnlyLeft.Rows = append(res.OnlyLeft.Rows, append([]string{c}, left.Rows[i]...))
	}
	for i, c := range rc {
		if !inLeft[c] {
			res.OnlyRight.Rows = append(res.OnlyRight.Rows, append([]string{c}, right.Rows[i]...))
		}
	}
	res.Common = len(common)
	return res, nil
}

func codes(t *sheet.Table, key1, key2 string) ([]string, error) {
	idx, err := t.RequireColumns(key1, key2)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = MainCode(row[idx[0]], row[idx[1]])
	}
	return out, nil
}

func withCode(t *sheet.Table) *sheet.Table {
	return &sheet.Table{
		Name:    t.Name,
		Headers: append([]string{MainCodeColumn}, t.Headers...),
		Rows:    [][]string{},
	}
}
