// Package ranking orders master rows by explicit state and program ranks.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/eternals/internal/sheet"
)

// Kind is the dimension a rank applies to.
type Kind string

const (
	KindState   Kind = "state"
	KindProgram Kind = "program"
)

// Assignment maps an item (a state or a program) to its rank. Rank 1 sorts
// first.
type Assignment map[string]int

// DuplicateRankError reports two items sharing a rank in one dimension.
type DuplicateRankError struct {
	Kind  Kind
	Rank  int
	Items []string
}

func (e *DuplicateRankError) Error() string {
	return fmt.Sprintf("%s rank %d assigned to more than one item: %s", e.Kind, e.Rank, strings.Join(e.Items, ", "))
}

// InvalidRankError reports a rank that is not a positive integer.
type InvalidRankError struct {
	Kind Kind
	Item string
	Rank string
}

func (e *InvalidRankError) Error() string {
	return fmt.Sprintf("%s %q has invalid rank %q", e.Kind, e.Item, e.Rank)
}

// DuplicateItemError reports one item listed more than once under names
// that differ only in case or surrounding space.
type DuplicateItemError struct {
	Kind  Kind
	Items []string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("%s listed more than once: %s", e.Kind, strings.Join(e.Items, ", "))
}

// Validate checks that every rank is positive and unique, and that no two
// items name the same thing once case and space are ignored.
func (a Assignment) Validate(kind Kind) error {
	byRank := make(map[int][]string, len(a))
	byKey := make(map[string][]string, len(a))
	for item, r := range a {
		if r < 1 {
			return &InvalidRankError{Kind: kind, Item: item, Rank: strconv.Itoa(r)}
		}
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%s rank %d has an empty item", kind, r)
		}
		byRank[r] = append(byRank[r], item)
		byKey[itemKey(item)] = append(byKey[itemKey(item)], item)
	}
	for _, k := range slices.Sorted(maps.Keys(byKey)) {
		if items := byKey[k]; len(items) > 1 {
			slices.Sort(items)
			return &DuplicateItemError{Kind: kind, Items: items}
		}
	}
	for _, r := range slices.Sorted(maps.Keys(byRank)) {
		if items := byRank[r]; len(items) > 1 {
			slices.Sort(items)
			return &DuplicateRankError{Kind: kind, Rank: r, Items: items}
		}
	}
	return nil
}

func itemKey(item string) string {
	return strings.ToLower(strings.TrimSpace(item))
}

// index keys a validated assignment by itemKey.
func (a Assignment) index() map[string]int {
	out := make(map[string]int, len(a))
	for item, r := range a {
		out[itemKey(item)] = r
	}
	return out
}

// Request describes one shortlist.
type Request struct {
	StateColumn   string     `json:"state_column"`
	ProgramColumn string     `json:"program_column"`
	StateRanks    Assignment `json:"state_ranks"`
	ProgramRanks  Assignment `json:"program_ranks"`
}

// Rank column names appended to a shortlist.
const (
	StateRankColumn   = "State Rank"
	ProgramRankColumn = "Program Rank"
)

// Shortlist returns the rows of master whose state and program are both
// ranked, ordered by state rank, then program rank, then original order.
// The two rank columns are appended to each row.
func Shortlist(master *sheet.Table, req Request) (*sheet.Table, error) {
	if len(req.StateRanks) == 0 && len(req.ProgramRanks) == 0 {
		return nil, errors.New("no ranks assigned")
	}
	if err := req.StateRanks.Validate(KindState); err != nil {
		return nil, err
	}
	if err := req.ProgramRanks.Validate(KindProgram); err != nil {
		return nil, err
	}
	idx, err := master.RequireColumns(req.StateColumn, req.ProgramColumn)
	if err != nil {
		return nil, err
	}
	stateCol, programCol := idx[0], idx[1]
	stateRanks, programRanks := req.StateRanks.index(), req.ProgramRanks.index()

	type ranked struct {
		row            []string
		state, program int
	}
	var picked []ranked
	for _, row := range master.Rows {
		s, ok := stateRanks[itemKey(row[stateCol])]
		if !ok {
			continue
		}
		p, ok := programRanks[itemKey(row[programCol])]
		if !ok {
			continue
		}
		picked = append(picked, ranked{row: row, state: s, program: p})
	}
	slices.SortStableFunc(picked, func(a, b ranked) int {
		if c := cmp.Compare(a.state, b.state); c != 0 {
			return c
		}
		return cmp.Compare(a.program, b.program)
	})

	out := &sheet.Table{
		Name:    master.Name + " shortlist",
		Headers: append(slices.Clone(master.Headers), StateRankColumn, ProgramRankColumn),
		Rows:    make([][]string, 0, len(picked)),
	}
	for _, r := range picked {
		row := append(slices.Clone(r.row), strconv.Itoa(r.state), strconv.Itoa(r.program))
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Rank sheet columns.
const (
	ItemColumn = "Item"
	RankColumn = "Rank"
	KindColumn = "Kind"
)

// FromSheet reads state and program assignments from a rank sheet with
// Item, Rank and Kind columns.
func FromSheet(t *sheet.Table) (states, programs Assignment, err error) {
	idx, err := t.RequireColumns(ItemColumn, RankColumn, KindColumn)
	if err != nil {
		return nil, nil, err
	}
	states, programs = Assignment{}, Assignment{}
	for i, row := range t.Rows {
		item := strings.TrimSpace(row[idx[0]])
		rawRank := strings.TrimSpace(row[idx[1]])
		kind := Kind(strings.ToLower(strings.TrimSpace(row[idx[2]])))

		var dst Assignment
		switch kind {
		case KindState:
			dst = states
		case KindProgram:
			dst = programs
		default:
			return nil, nil, fmt.Errorf("row %d: unknown kind %q", i+2, row[idx[2]])
		}
		r, convErr := strconv.Atoi(rawRank)
		if convErr != nil || r < 1 {
			return nil, nil, &InvalidRankError{Kind: kind, Item: item, Rank: rawRank}
		}
		if _, dup := dst[item]; dup {
			return nil, nil, fmt.Errorf("row %d: %s %q ranked twice", i+2, kind, item)
		}
		dst[item] = r
	}
	if err := states.Validate(KindState); err != nil {
		return nil, nil, err
	}
	if err := programs.Validate(KindProgram); err != nil {
		return nil, nil, err
	}
	return states, programs, nil
}
