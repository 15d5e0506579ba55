package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmountAllowsZero(t *testing.T) {
	m, err := ParseAmount("0")
	if err != nil || m.Cents != 0 {
		t.Fatalf("expected zero amount, got %v (err=%v)", m, err)
	}
	if _, err := ParseAmount("-0.01"); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestMoneyArithmeticAndFormat(t *testing.T) {
	a := Cents(1050)
	b := Cents(2000)
	if got := a.Sub(b); got.Cents != -950 || got.String() != "-9.50" {
		t.Fatalf("unexpected sub: %v %q", got.Cents, got.String())
	}
	if got := a.Add(b); got.String() != "30.50" {
		t.Fatalf("unexpected add: %q", got.String())
	}
	if OrZero(nil).Cents != 0 {
		t.Fatalf("nil should be zero")
	}
	if OrZero(Cents(7).Ptr()).Cents != 7 {
		t.Fatalf("ptr roundtrip failed")
	}
}
