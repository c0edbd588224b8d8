package cvparse

import "testing"

func TestFirstValidYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"graduated in 2015", 2015},
		{"1949 was too early, finished 1955", 1955},
		{"no years here", 0},
		{"year 3000", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := firstValidYear(tt.in); got != tt.want {
			t.Errorf("firstValidYear(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseYearRange(t *testing.T) {
	tests := []struct {
		in         string
		start, end string
	}{
		{"2019 - Present", "2019", "present"},
		{"2019-2021", "2019", "2021"},
		{"2018 a 2022", "2018", "2022"},
		{"de 2015 hasta 2017", "2015", "2017"},
		{"2020 to actualidad", "2020", "present"},
		{"2021 - hoy", "2021", "present"},
		{"2020 - 2015", "2020", ""}, // inverted range keeps the start only
		{"just 2019 alone", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		start, end := parseYearRange(tt.in)
		if start != tt.start || end != tt.end {
			t.Errorf("parseYearRange(%q) = (%q, %q), want (%q, %q)",
				tt.in, start, end, tt.start, tt.end)
		}
	}
}
