package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1, true},
		{"1200", 1200, true},
		{"1,200", 1200, true},
		{"¥3000", 3000, true},
		{" 450 ", 450, true},
		{"1500.5", 1501, true}, // half-up rounding
		{"1500.4", 1500, true},
		{"0", 0, false},
		{"0.4", 0, false},
		{"-1", 0, false},
		{"+5", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
		{"1e20000000", 0, false},
		{"1e-99999999", 0, false},
		{"1E5", 0, false},
		{"0x10", 0, false},
		{".", 0, false},
		{"000000000000000001200", 1200, true},
		{"1000000000000", 1000000000000, true},
		{"1000000000001", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("%q expected ErrInvalidInput, got %v", tc.in, err)
			}
		}
	}
}

func TestParseAmountRejectsExponentsQuickly(t *testing.T) {
	for _, in := range []string{"1e20000000", "1e999999999", "1e-99999999"} {
		start := time.Now()
		_, err := ParseAmount(in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q expected ErrInvalidInput, got %v", in, err)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Fatalf("%q took %v", in, elapsed)
		}
	}
}

func TestParseBudget(t *testing.T) {
	for _, zero := range []string{"0", "0.0", "00", "¥0", " 0 "} {
		if v, err := ParseBudget(zero); err != nil || v != 0 {
			t.Fatalf("%q expected 0, got %d (err=%v)", zero, v, err)
		}
	}
	if v, err := ParseBudget("50,000"); err != nil || v != 50000 {
		t.Fatalf("expected 50000, got %d (err=%v)", v, err)
	}
	for _, bad := range []string{"-10", "1e9", "abc", ""} {
		_, err := ParseBudget(bad)
		var ie *InputError
		if !errors.As(err, &ie) || ie.Field != "budget" {
			t.Fatalf("%q expected budget input error, got %v", bad, err)
		}
	}
}

func TestFormatYen(t *testing.T) {
	cases := map[int64]string{
		0:       "¥0",
		950:     "¥950",
		50000:   "¥50,000",
		-12000:  "¥-12,000",
		1234567: "¥1,234,567",
	}
	for in, want := range cases {
		if got := FormatYen(in); got != want {
			t.Fatalf("FormatYen(%d) = %q, want %q", in, got, want)
		}
	}
}
