package cvparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// presentTokens normalize to the canonical "present" end date.
var presentTokens = map[string]bool{
	"present": true, "presente": true, "actual": true, "actualidad": true,
	"current": true, "currently": true, "hoy": true, "now": true, "fecha": true,
}

var soloYearRe = regexp.MustCompile(`\b(19[5-9]\d|20\d{2})\b`)

// firstValidYear returns the first 4-digit year in [1950, now+5] found in s,
// or 0 when none.
func firstValidYear(s string) int {
	maxYear := time.Now().Year() + 5
	for _, m := range soloYearRe.FindAllString(s, -1) {
		y, err := strconv.Atoi(m)
		if err == nil && y >= 1950 && y <= maxYear {
			return y
		}
	}
	return 0
}

// parseYearRange extracts a start/end pair from s. End is a year string or
// "present"; both empty when no range is found.
func parseYearRange(s string) (start, end string) {
	m := yearRangeRe.FindStringSubmatch(s)
	if m == nil {
		return "", ""
	}
	start = m[1]
	endTok := strings.ToLower(m[2])
	if presentTokens[endTok] {
		return start, "present"
	}
	// Reject inverted ranges; keep the start year alone.
	sy, _ := strconv.Atoi(start)
	ey, err := strconv.Atoi(m[2])
	if err != nil || ey < sy {
		return start, ""
	}
	return start, m[2]
}
