package ranking

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/eternals/internal/sheet"
)

func masterTable() *sheet.Table {
	return &sheet.Table{
		Name:    "master",
		Headers: []string{"College", "State", "Program"},
		Rows: [][]string{
			{"A", "TS", "CSE"},
			{"B", "AP", "ECE"},
			{"C", "TS", "ECE"},
			{"D", "KA", "CSE"},
			{"E", "ts ", "CSE"},
			{"F", "AP", "CSE"},
		},
	}
}

func TestShortlist_Order(t *testing.T) {
	out, err := Shortlist(masterTable(), Request{
		StateColumn:   "State",
		ProgramColumn: "program",
		StateRanks:    Assignment{"AP": 1, "TS": 2},
		ProgramRanks:  Assignment{"CSE": 1, "ECE": 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, row := range out.Rows {
		got = append(got, row[0])
	}
	// KA is unranked; TS/CSE ties keep their original order (A before E).
	if strings.Join(got, "") != "FBAEC" {
		t.Errorf("unexpected order %v", got)
	}
	if n := len(out.Headers); n != 5 || out.Headers[3] != StateRankColumn || out.Headers[4] != ProgramRankColumn {
		t.Errorf("unexpected headers %v", out.Headers)
	}
	if out.Rows[0][3] != "1" || out.Rows[0][4] != "1" {
		t.Errorf("rank columns not appended: %v", out.Rows[0])
	}
}

func TestShortlist_DoesNotMutateMaster(t *testing.T) {
	m := masterTable()
	if _, err := Shortlist(m, Request{
		StateColumn: "State", ProgramColumn: "Program",
		StateRanks: Assignment{"TS": 1}, ProgramRanks: Assignment{"CSE": 1},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Headers) != 3 || len(m.Rows[0]) != 3 {
		t.Error("master table was modified")
	}
}

func TestShortlist_Errors(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		check func(error) bool
	}{
		{
			name:  "duplicate state rank",
			req:   Request{StateColumn: "State", ProgramColumn: "Program", StateRanks: Assignment{"TS": 1, "AP": 1}, ProgramRanks: Assignment{"CSE": 1}},
			check: func(err error) bool { var e *DuplicateRankError; return errors.As(err, &e) && e.Kind == KindState && e.Rank == 1 },
		},
		{
			name: "state named twice in different case",
			req:  Request{StateColumn: "State", ProgramColumn: "Program", StateRanks: Assignment{"Delhi": 1, "delhi ": 2}, ProgramRanks: Assignment{"CSE": 1}},
			check: func(err error) bool {
				var e *DuplicateItemError
				return errors.As(err, &e) && e.Kind == KindState && len(e.Items) == 2
			},
		},
		{
			name:  "zero program rank",
			req:   Request{StateColumn: "State", ProgramColumn: "Program", StateRanks: Assignment{"TS": 1}, ProgramRanks: Assignment{"CSE": 0}},
			check: func(err error) bool { var e *InvalidRankError; return errors.As(err, &e) && e.Kind == KindProgram },
		},
		{
			name:  "missing column",
			req:   Request{StateColumn: "Region", ProgramColumn: "Program", StateRanks: Assignment{"TS": 1}, ProgramRanks: Assignment{"CSE": 1}},
			check: func(err error) bool { var e *sheet.MissingColumnsError; return errors.As(err, &e) && e.Missing[0] == "Region" },
		},
		{
			name:  "no ranks",
			req:   Request{StateColumn: "State", ProgramColumn: "Program"},
			check: func(err error) bool { return err != nil },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Shortlist(masterTable(), tc.req)
			if !tc.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFromSheet(t *testing.T) {
	tbl := &sheet.Table{
		Name:    "ranks",
		Headers: []string{"Item", "Rank", "Kind"},
		Rows: [][]string{
			{"TS", "2", "State"},
			{"AP", " 1 ", "state"},
			{"CSE", "1", "PROGRAM"},
		},
	}
	states, programs, err := FromSheet(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if states["AP"] != 1 || states["TS"] != 2 || programs["CSE"] != 1 {
		t.Errorf("unexpected assignments %v %v", states, programs)
	}
}

func TestFromSheet_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"bad kind", [][]string{{"TS", "1", "city"}}},
		{"bad rank", [][]string{{"TS", "first", "state"}}},
		{"negative rank", [][]string{{"TS", "-1", "state"}}},
		{"duplicate rank", [][]string{{"TS", "1", "state"}, {"AP", "1", "state"}}},
		{"duplicate item", [][]string{{"TS", "1", "state"}, {"TS", "2", "state"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tbl := &sheet.Table{Name: "ranks", Headers: []string{"Item", "Rank", "Kind"}, Rows: tc.rows}
			if _, _, err := FromSheet(tbl); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, _, err := FromSheet(&sheet.Table{Name: "ranks", Headers: []string{"Item"}})
	var mce *sheet.MissingColumnsError
	if !errors.As(err, &mce) || len(mce.Missing) != 2 {
		t.Errorf("expected missing Rank and Kind, got %v", err)
	}
}

func TestShortlist_MatchIgnoresCaseAndSpace(t *testing.T) {
	master := &sheet.Table{
		Name:    "master",
		Headers: []string{"College", "State", "Program"},
		Rows: [][]string{
			{"A", " DELHI ", "cse"},
			{"B", "Goa", "CSE"},
		},
	}
	req := Request{
		StateColumn:   "State",
		ProgramColumn: "Program",
		StateRanks:    Assignment{"Goa": 1, "delhi": 2},
		ProgramRanks:  Assignment{"CSE": 1},
	}
	for i := 0; i < 20; i++ {
		out, err := Shortlist(master, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Len() != 2 || out.Rows[0][0] != "B" || out.Rows[1][0] != "A" || out.Rows[1][3] != "2" {
			t.Fatalf("unexpected shortlist %v", out.Rows)
		}
	}
}
