// Package fees aggregates fee columns for bar charts.
package fees

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/eternals/internal/sheet"
)

// Bar is one bar of the average-fee chart.
type Bar struct {
	Group   string  `json:"group"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Chart is the aggregated result.
type Chart struct {
	GroupColumn string `json:"group_column"`
	FeeColumn   string `json:"fee_column"`
	Bars        []Bar  `json:"bars"`
	Skipped     int    `json:"skipped"`
}

// ParseFee reads an amount such as "₹1,20,000" or "$ 950.50".
func ParseFee(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',', r == ' ', r == '\t', r == '\u00a0':
			return -1
		case strings.ContainsRune("₹$€£¥", r):
			return -1
		}
		return r
	}, strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "RS.")))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Average groups rows by groupCol and averages feeCol. Rows with an empty
// group or an unparseable fee are counted in Skipped. Bars are sorted by
// group name.
func Average(t *sheet.Table, groupCol, feeCol string) (*Chart, error) {
	idx, err := t.RequireColumns(groupCol, feeCol)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[string]*acc)
	chart := &Chart{GroupColumn: groupCol, FeeColumn: feeCol, Bars: []Bar{}}
	for _, row := range t.Rows {
		g := strings.TrimSpace(row[idx[0]])
		v, ok := ParseFee(row[idx[1]])
		if g == "" || !ok {
			chart.Skipped++
			continue
		}
		a := groups[g]
		if a == nil {
			a = &acc{}
			groups[g] = a
		}
		a.sum += v
		a.n++
	}

	for g, a := range groups {
		chart.Bars = append(chart.Bars, Bar{Group: g, Average: a.sum / float64(a.n), Count: a.n})
	}
	slices.SortFunc(chart.Bars, func(a, b Bar) int { return cmp.Compare(a.Group, b.Group) })
	return chart, nil
}
