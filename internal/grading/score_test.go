package grading

import "testing"

func TestParseScore(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"4.5", 4.5, true},
		{"4,5", 4.5, true},
		{" 4.50 ", 4.5, true},
		{"0", 0, true},
		{"-1", -1, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.234,5", 0, false},
		{"1,2,3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseScore(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ParseScore(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
