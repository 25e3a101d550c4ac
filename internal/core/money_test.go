package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.25", 1.25, true},
		{"20%", 20, true},
		{"20%%", 20, true},
		{" 2.50 ", 2.5, true},
		{"-3", -3, true},
		{"1e2", 100, true},
		{"abc", 0, false},
		{"%", 0, false},
		{"", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"1,5", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if !errors.Is(err, ErrNotANumber) {
			t.Fatalf("%q expected ErrNotANumber, got %v", tc.in, err)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		20:      20,
		1.005:   1.01,
		2.675:   2.68,
		33.3333: 33.33,
		0.004:   0,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:          "$0.00",
		8:          "$8.00",
		1234.5:     "$1,234.50",
		1000000.25: "$1,000,000.25",
		-12.3:      "-$12.30",
	}
	for in, want := range cases {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(20); got != "20%" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPercent(12.6); got != "13%" {
		t.Fatalf("got %q", got)
	}
}
