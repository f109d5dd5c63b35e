package google

import (
	"testing"
	"time"

	"assetguard/internal/core"
)

func TestParseExpenseRow(t *testing.T) {
	rec, err := parseExpenseRow(5, []any{"2025-01-31", "coffee", float64(450), "2025-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 5 || rec.Item != "coffee" || rec.Amount != 450 || rec.Month.String() != "2025-01" {
		t.Fatalf("unexpected record %+v", rec)
	}

	// missing month column falls back to the date
	rec, err = parseExpenseRow(6, []any{"2024-12-02", "gift", "12,000"})
	if err != nil || rec.Month.String() != "2024-12" || rec.Amount != 12000 {
		t.Fatalf("unexpected record %+v (err=%v)", rec, err)
	}

	// serial date from a hand-typed cell: 45658 = 2025-01-01
	rec, err = parseExpenseRow(7, []any{float64(45658), "tea", float64(300), ""})
	if err != nil || rec.Date.String() != "2025-01-01" {
		t.Fatalf("unexpected serial date %+v (err=%v)", rec, err)
	}

	bads := [][]any{
		{"2025-01-01", "x"},
		{"01/01/2025", "x", float64(1), "2025-01"},
		{"2025-01-01", "x", "abc", "2025-01"},
		{"2025-01-01", "x", float64(0), "2025-01"},
		{"2025-01-01", "x", float64(10), "Jan"},
	}
	for i, row := range bads {
		if _, err := parseExpenseRow(int64(i), row); err == nil {
			t.Fatalf("row %d expected error", i)
		}
	}
}

func TestParseRowNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"Expenses!A7:D7", 7, true},
		{"'My Sheet'!A12:D12", 12, true},
		{"Budgets!$A$3:$B$3", 3, true},
		{"Expenses!A:D", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := parseRowNumber(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDeleteRowRequestsBottomUp(t *testing.T) {
	reqs := deleteRowRequests(42, []int64{3, 9, 5})
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(reqs))
	}
	wantStart := []int64{8, 4, 2}
	for i, r := range reqs {
		rng := r.DeleteDimension.Range
		if rng.SheetId != 42 || rng.Dimension != "ROWS" {
			t.Fatalf("unexpected range %+v", rng)
		}
		if rng.StartIndex != wantStart[i] || rng.EndIndex != wantStart[i]+1 {
			t.Fatalf("request %d: got [%d,%d)", i, rng.StartIndex, rng.EndIndex)
		}
	}
}

func TestExpenseRowRoundTrip(t *testing.T) {
	rec, _ := core.NewExpenseRecord(core.NewDate(2025, time.June, 9), "lunch", 1200)
	row := expenseRow(rec)
	// RAW input keeps int64 as JSON number; the API hands it back as float64
	row[2] = float64(row[2].(int64))
	got, err := parseExpenseRow(10, row)
	if err != nil || got.Amount != 1200 || got.Date.String() != "2025-06-09" {
		t.Fatalf("unexpected %+v (err=%v)", got, err)
	}
}
